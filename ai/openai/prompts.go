package openai

const factExtractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "facts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "label": {
            "type": "string"
          },
          "value_text": {
            "type": "string"
          }
        },
        "required": ["label", "value_text"],
        "additionalProperties": false
      }
    }
  },
  "required": ["facts"],
  "additionalProperties": false
}`

const factExtractionPrompt = `Extract key facts from the given text and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

` + factExtractionResponseSchema + `

Rules:
- "label" is the short name of the fact.
- "value_text" is the value of the fact as stated in the text.
- Include only facts that are explicitly stated in the text. Do not hallucinate.
- If no facts can be identified, return "facts": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Acme Corp reported revenue of $4.2B in 2024, up 12% year over year."
Output:
{
  "facts": [
    {"label":"Acme Corp 2024 revenue","value_text":"$4.2B"},
    {"label":"Acme Corp revenue growth","value_text":"12% year over year"}
  ]
}`

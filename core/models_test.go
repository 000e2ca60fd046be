package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestFact_Tuple(t *testing.T) {
	tests := []struct {
		name string
		fact Fact
		want string
	}{
		{
			name: "basic fact",
			fact: Fact{DocumentId: 12, Label: "revenue", Value: "$10M"},
			want: "(12,revenue,$10M)",
		},
		{
			name: "empty value",
			fact: Fact{DocumentId: 1, Label: "ceo", Value: ""},
			want: "(1,ceo,)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fact.Tuple(); got != tt.want {
				t.Errorf("Tuple() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskStatus_Terminal(t *testing.T) {
	if TaskStatusPending.Terminal() || TaskStatusInProgress.Terminal() {
		t.Error("transient statuses reported as terminal")
	}
	if !TaskStatusCompleted.Terminal() || !TaskStatusFailed.Terminal() {
		t.Error("terminal statuses not reported as terminal")
	}
}

func TestTaskStatus_String(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   string
	}{
		{TaskStatusPending, "PENDING"},
		{TaskStatusInProgress, "IN_PROGRESS"},
		{TaskStatusCompleted, "COMPLETED"},
		{TaskStatusFailed, "FAILED"},
		{TaskStatus(0), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("TaskStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docufi/core"
)

const (
	taskRecordPrefix = "taskrec"
	taskIDSeq        = "taskseq"

	documentRecordPrefix = "docrec"
	documentIDSeq        = "docseq"

	pageRecordPrefix  = "pagerec"
	pageDocumentIndex = "pagedoc"
	pageIDSeq         = "pageseq"

	factRecordPrefix  = "factrec"
	factDocumentIndex = "factdoc"
)

// makeTaskKey generates a key for a task record by ID.
func makeTaskKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", taskRecordPrefix, id))
}

// makeDocumentKey generates a key for a document record by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentRecordPrefix, id))
}

// makePageKey generates a key for a page record by ID.
func makePageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", pageRecordPrefix, id))
}

// makeFactKey generates a key for a fact record by ID.
func makeFactKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", factRecordPrefix, id))
}

// makePageDocKey generates a composite key for the page-by-document index.
// Format: prefix:documentID:pageNumber
func makePageDocKey(docID core.ID, number int) []byte {
	prefix := pageDocumentIndex + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for documentID + 8 bytes for page number
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(number))
	return buf
}

// makePartialPageDocKey generates a partial key for scanning a document's pages.
// Format: prefix:documentID
func makePartialPageDocKey(docID core.ID) []byte {
	prefix := pageDocumentIndex + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

// makeFactDocKey generates a composite key for the fact-by-document index.
// Format: prefix:documentID:factID
func makeFactDocKey(docID, factID core.ID) []byte {
	prefix := factDocumentIndex + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(factID))
	return buf
}

// makePartialFactDocKey generates a partial key for scanning a document's facts.
// Format: prefix:documentID
func makePartialFactDocKey(docID core.ID) []byte {
	prefix := factDocumentIndex + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

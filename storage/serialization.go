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

package storage

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/docufi/core"
)

// Codecs are hand-written on top of mus-go varint primitives. Strings and
// vectors are length-prefixed; timestamps are stored as Unix microseconds.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.SizeUint64(uint64(id)))
	varint.MarshalUint64(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.UnmarshalUint64(data)
	return core.ID(v), err
}

// MarshalTask serializes a Task to bytes.
func MarshalTask(task *core.Task) []byte {
	size := varint.SizeUint64(uint64(task.Id)) +
		sizeString(task.Query) +
		varint.SizeInt64(int64(task.Status)) +
		sizeString(task.Progress) +
		sizeString(task.Report) +
		sizeString(task.FailureReason) +
		sizeTime(task.CreatedAt) +
		sizeTime(task.UpdatedAt)

	buf := make([]byte, size)
	n := varint.MarshalUint64(uint64(task.Id), buf)
	n += marshalString(task.Query, buf[n:])
	n += varint.MarshalInt64(int64(task.Status), buf[n:])
	n += marshalString(task.Progress, buf[n:])
	n += marshalString(task.Report, buf[n:])
	n += marshalString(task.FailureReason, buf[n:])
	n += marshalTime(task.CreatedAt, buf[n:])
	marshalTime(task.UpdatedAt, buf[n:])
	return buf
}

// UnmarshalTask deserializes a Task from bytes.
func UnmarshalTask(data []byte) (*core.Task, error) {
	task := &core.Task{}

	id, n, err := varint.UnmarshalUint64(data)
	if err != nil {
		return nil, err
	}
	task.Id = core.ID(id)

	if task.Query, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	status, m, err := varint.UnmarshalInt64(data[n:])
	if err != nil {
		return nil, err
	}
	task.Status = core.TaskStatus(status)
	n += m

	if task.Progress, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	if task.Report, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	if task.FailureReason, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	if task.CreatedAt, n, err = unmarshalTime(data, n); err != nil {
		return nil, err
	}
	if task.UpdatedAt, _, err = unmarshalTime(data, n); err != nil {
		return nil, err
	}
	return task, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	size := varint.SizeUint64(uint64(doc.Id)) +
		sizeString(doc.Filename) +
		sizeTime(doc.InsertedAt)

	buf := make([]byte, size)
	n := varint.MarshalUint64(uint64(doc.Id), buf)
	n += marshalString(doc.Filename, buf[n:])
	marshalTime(doc.InsertedAt, buf[n:])
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc := &core.Document{}

	id, n, err := varint.UnmarshalUint64(data)
	if err != nil {
		return nil, err
	}
	doc.Id = core.ID(id)

	if doc.Filename, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	if doc.InsertedAt, _, err = unmarshalTime(data, n); err != nil {
		return nil, err
	}
	return doc, nil
}

// MarshalPage serializes a Page to bytes.
func MarshalPage(page *core.Page) []byte {
	size := varint.SizeUint64(uint64(page.Id)) +
		varint.SizeUint64(uint64(page.DocumentId)) +
		varint.SizeInt64(int64(page.Number)) +
		sizeString(page.Contents) +
		sizeVector(page.Vector) +
		sizeTime(page.InsertedAt) +
		sizeTime(page.UpdatedAt)

	buf := make([]byte, size)
	n := varint.MarshalUint64(uint64(page.Id), buf)
	n += varint.MarshalUint64(uint64(page.DocumentId), buf[n:])
	n += varint.MarshalInt64(int64(page.Number), buf[n:])
	n += marshalString(page.Contents, buf[n:])
	n += marshalVector(page.Vector, buf[n:])
	n += marshalTime(page.InsertedAt, buf[n:])
	marshalTime(page.UpdatedAt, buf[n:])
	return buf
}

// UnmarshalPage deserializes a Page from bytes.
func UnmarshalPage(data []byte) (*core.Page, error) {
	page := &core.Page{}

	id, n, err := varint.UnmarshalUint64(data)
	if err != nil {
		return nil, err
	}
	page.Id = core.ID(id)

	docID, m, err := varint.UnmarshalUint64(data[n:])
	if err != nil {
		return nil, err
	}
	page.DocumentId = core.ID(docID)
	n += m

	number, m, err := varint.UnmarshalInt64(data[n:])
	if err != nil {
		return nil, err
	}
	page.Number = int(number)
	n += m

	if page.Contents, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	if page.Vector, n, err = unmarshalVector(data, n); err != nil {
		return nil, err
	}
	if page.InsertedAt, n, err = unmarshalTime(data, n); err != nil {
		return nil, err
	}
	if page.UpdatedAt, _, err = unmarshalTime(data, n); err != nil {
		return nil, err
	}
	return page, nil
}

// MarshalFact serializes a Fact to bytes.
func MarshalFact(fact *core.Fact) []byte {
	size := varint.SizeUint64(uint64(fact.Id)) +
		varint.SizeUint64(uint64(fact.DocumentId)) +
		varint.SizeInt64(int64(fact.PageNumber)) +
		sizeString(fact.Label) +
		sizeString(fact.Value) +
		sizeVector(fact.Vector) +
		sizeTime(fact.InsertedAt) +
		sizeTime(fact.UpdatedAt)

	buf := make([]byte, size)
	n := varint.MarshalUint64(uint64(fact.Id), buf)
	n += varint.MarshalUint64(uint64(fact.DocumentId), buf[n:])
	n += varint.MarshalInt64(int64(fact.PageNumber), buf[n:])
	n += marshalString(fact.Label, buf[n:])
	n += marshalString(fact.Value, buf[n:])
	n += marshalVector(fact.Vector, buf[n:])
	n += marshalTime(fact.InsertedAt, buf[n:])
	marshalTime(fact.UpdatedAt, buf[n:])
	return buf
}

// UnmarshalFact deserializes a Fact from bytes.
func UnmarshalFact(data []byte) (*core.Fact, error) {
	fact := &core.Fact{}

	id, n, err := varint.UnmarshalUint64(data)
	if err != nil {
		return nil, err
	}
	fact.Id = core.ID(id)

	docID, m, err := varint.UnmarshalUint64(data[n:])
	if err != nil {
		return nil, err
	}
	fact.DocumentId = core.ID(docID)
	n += m

	pageNumber, m, err := varint.UnmarshalInt64(data[n:])
	if err != nil {
		return nil, err
	}
	fact.PageNumber = int(pageNumber)
	n += m

	if fact.Label, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	if fact.Value, n, err = unmarshalString(data, n); err != nil {
		return nil, err
	}
	if fact.Vector, n, err = unmarshalVector(data, n); err != nil {
		return nil, err
	}
	if fact.InsertedAt, n, err = unmarshalTime(data, n); err != nil {
		return nil, err
	}
	if fact.UpdatedAt, _, err = unmarshalTime(data, n); err != nil {
		return nil, err
	}
	return fact, nil
}

func sizeString(v string) int {
	return varint.SizeUint64(uint64(len(v))) + len(v)
}

func marshalString(v string, bs []byte) int {
	n := varint.MarshalUint64(uint64(len(v)), bs)
	return n + copy(bs[n:], v)
}

// unmarshalString reads a length-prefixed string starting at offset.
// Returns the string and the offset past it.
func unmarshalString(data []byte, offset int) (string, int, error) {
	length, n, err := varint.UnmarshalUint64(data[offset:])
	if err != nil {
		return "", offset, err
	}
	offset += n
	if uint64(len(data)-offset) < length {
		return "", offset, ErrTruncatedData
	}
	end := offset + int(length)
	return string(data[offset:end]), end, nil
}

func sizeVector(v []float32) int {
	size := varint.SizeUint64(uint64(len(v)))
	for _, f := range v {
		size += varint.SizeUint32(math.Float32bits(f))
	}
	return size
}

func marshalVector(v []float32, bs []byte) int {
	n := varint.MarshalUint64(uint64(len(v)), bs)
	for _, f := range v {
		n += varint.MarshalUint32(math.Float32bits(f), bs[n:])
	}
	return n
}

func unmarshalVector(data []byte, offset int) ([]float32, int, error) {
	length, n, err := varint.UnmarshalUint64(data[offset:])
	if err != nil {
		return nil, offset, err
	}
	offset += n
	if length == 0 {
		return nil, offset, nil
	}
	v := make([]float32, length)
	for i := range v {
		bits, n, err := varint.UnmarshalUint32(data[offset:])
		if err != nil {
			return nil, offset, err
		}
		v[i] = math.Float32frombits(bits)
		offset += n
	}
	return v, offset, nil
}

func sizeTime(t time.Time) int {
	return varint.SizeInt64(t.UnixMicro())
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.MarshalInt64(t.UnixMicro(), bs)
}

func unmarshalTime(data []byte, offset int) (time.Time, int, error) {
	micros, n, err := varint.UnmarshalInt64(data[offset:])
	if err != nil {
		return time.Time{}, offset, err
	}
	return time.UnixMicro(micros).UTC(), offset + n, nil
}

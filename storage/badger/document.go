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
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	docSeq  *badger.Sequence
	pageSeq *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	docSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	pageSeq, err := backend.GetSequence(pageIDSeq)
	if err != nil {
		docSeq.Release()
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		docSeq:  docSeq,
		pageSeq: pageSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *DocumentRepository) Close() error {
	if err := r.docSeq.Release(); err != nil {
		return err
	}
	return r.pageSeq.Release()
}

// AddDocument inserts a new document record.
func (r *DocumentRepository) AddDocument(ctx context.Context, filename string) (*core.Document, error) {
	doc := &core.Document{
		Filename:   filename,
		InsertedAt: time.Now().UTC(),
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := nextSequenceID(r.docSeq)
		if err != nil {
			return err
		}
		doc.Id = core.ID(nextID)

		if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalDocument(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// AddPages adds page chunks to storage.
func (r *DocumentRepository) AddPages(ctx context.Context, pages ...*core.Page) ([]*core.Page, error) {
	for _, page := range pages {
		if err := core.ValidatePage(page); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, page := range pages {
			nextID, err := nextSequenceID(r.pageSeq)
			if err != nil {
				return err
			}
			page.Id = core.ID(nextID)
			page.InsertedAt = time.Now().UTC()
			page.UpdatedAt = page.InsertedAt

			if err := tx.Set(makePageKey(page.Id), storage.MarshalPage(page)); err != nil {
				return err
			}

			// Document index keyed by page number for ordered retrieval
			docKey := makePageDocKey(page.DocumentId, page.Number)
			if err := tx.Set(docKey, storage.MarshalID(page.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return pages, err
}

// UpdatePages updates existing pages.
func (r *DocumentRepository) UpdatePages(ctx context.Context, pages ...*core.Page) ([]*core.Page, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, page := range pages {
			old, err := r.readPage(tx, page.Id)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			page.UpdatedAt = time.Now().UTC()
			if err := tx.Set(makePageKey(page.Id), storage.MarshalPage(page)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return pages, err
}

// GetPages retrieves pages by their IDs.
func (r *DocumentRepository) GetPages(ctx context.Context, ids ...core.ID) ([]*core.Page, error) {
	var result []*core.Page
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			page, err := r.readPage(tx, id)
			if err != nil {
				return err
			}
			if page != nil {
				result = append(result, page)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentPages retrieves all pages of a document ordered by page number.
func (r *DocumentRepository) GetDocumentPages(ctx context.Context, docID core.ID) ([]*core.Page, error) {
	var results []*core.Page
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialPageDocKey(docID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var pageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				pageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			page, err := r.readPage(tx, pageID)
			if err != nil {
				return err
			}
			if page != nil {
				results = append(results, page)
			}
		}
		return nil
	}, false)
	return results, err
}

// AddFacts adds extracted facts to storage using content-based IDs.
func (r *DocumentRepository) AddFacts(ctx context.Context, facts ...*core.Fact) ([]*core.Fact, error) {
	for _, fact := range facts {
		if err := core.ValidateFact(fact); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, fact := range facts {
			fact.Id = core.IDFromContent(fact.Tuple())
			if fact.InsertedAt.IsZero() {
				fact.InsertedAt = time.Now().UTC()
			}
			fact.UpdatedAt = time.Now().UTC()

			if err := tx.Set(makeFactKey(fact.Id), storage.MarshalFact(fact)); err != nil {
				return err
			}

			docKey := makeFactDocKey(fact.DocumentId, fact.Id)
			if err := tx.Set(docKey, storage.MarshalID(fact.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return facts, err
}

// GetDocumentFacts retrieves all facts extracted from a document.
func (r *DocumentRepository) GetDocumentFacts(ctx context.Context, docID core.ID) ([]*core.Fact, error) {
	var results []*core.Fact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialFactDocKey(docID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var factID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				factID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			fact, err := r.readFact(tx, factID)
			if err != nil {
				return err
			}
			if fact != nil {
				results = append(results, fact)
			}
		}
		return nil
	}, false)
	return results, err
}

// FindSimilarPages finds pages similar to the given vector.
// Scans all page records, scoring by cosine similarity
// (dot product for normalized vectors), and returns the top matches.
func (r *DocumentRepository) FindSimilarPages(ctx context.Context, vector []float32, docID core.ID, limit int) ([]*core.PageMatch, error) {
	var results []*core.PageMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pageRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var page *core.Page
			err := iter.Item().Value(func(val []byte) error {
				var err error
				page, err = storage.UnmarshalPage(val)
				return err
			})
			if err != nil {
				return err
			}
			if page == nil {
				continue
			}
			if docID != 0 && page.DocumentId != docID {
				continue
			}
			// Skip pages the embedding processor hasn't reached yet
			if len(page.Vector) == 0 {
				continue
			}

			results = append(results, &core.PageMatch{
				Page:  page,
				Score: dotProduct(vector, page.Vector),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	sortMatchesDesc(results, func(m *core.PageMatch) float32 { return m.Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// FindSimilarFacts finds facts similar to the given vector.
func (r *DocumentRepository) FindSimilarFacts(ctx context.Context, vector []float32, docID core.ID, limit int) ([]*core.FactMatch, error) {
	var results []*core.FactMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(factRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var fact *core.Fact
			err := iter.Item().Value(func(val []byte) error {
				var err error
				fact, err = storage.UnmarshalFact(val)
				return err
			})
			if err != nil {
				return err
			}
			if fact == nil {
				continue
			}
			if docID != 0 && fact.DocumentId != docID {
				continue
			}
			if len(fact.Vector) == 0 {
				continue
			}

			results = append(results, &core.FactMatch{
				Fact:  fact,
				Score: dotProduct(vector, fact.Vector),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	sortMatchesDesc(results, func(m *core.FactMatch) float32 { return m.Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *DocumentRepository) readPage(tx *badger.Txn, id core.ID) (*core.Page, error) {
	item, err := tx.Get(makePageKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var page *core.Page
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		page, unmarshalErr = storage.UnmarshalPage(val)
		return unmarshalErr
	})
	return page, err
}

func (r *DocumentRepository) readFact(tx *badger.Txn, id core.ID) (*core.Fact, error) {
	item, err := tx.Get(makeFactKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var fact *core.Fact
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		fact, unmarshalErr = storage.UnmarshalFact(val)
		return unmarshalErr
	})
	return fact, err
}

// nextSequenceID returns the next non-zero ID from a sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func nextSequenceID(seq *badger.Sequence) (uint64, error) {
	nextID, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if nextID == 0 {
		nextID, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return nextID, nil
}

// dotProduct computes the dot product of two vectors.
// Mismatched lengths compare only the overlapping prefix.
func dotProduct(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// sortMatchesDesc sorts matches by score, highest first.
func sortMatchesDesc[T any](matches []T, score func(T) float32) {
	slices.SortFunc(matches, func(a, b T) int {
		if score(a) > score(b) {
			return -1
		}
		if score(a) < score(b) {
			return 1
		}
		return 0
	})
}

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pcashin/hearthtab/internal/model"
)

// ErrVersionConflict is returned by Save when the document changed under
// the caller. Reload and reapply.
var ErrVersionConflict = errors.New("store: document version conflict")

// DocumentStore persists the whole household document as one JSON blob
// with a version counter for optimistic concurrency. Every writer must
// load, mutate, and save with the version it loaded; a compare-and-swap
// on the version rejects lost updates between concurrent administrators.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Load returns the current document and its version.
func (s *DocumentStore) Load() (model.Document, int64, error) {
	var data string
	var version int64
	err := s.db.QueryRow(`SELECT data, version FROM household_document WHERE id = 1`).Scan(&data, &version)
	if err != nil {
		return model.Document{}, 0, fmt.Errorf("load document: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return model.Document{}, 0, fmt.Errorf("decode document: %w", err)
	}
	return doc, version, nil
}

// Save writes doc if the stored version still equals expectedVersion,
// bumping the version. Returns ErrVersionConflict otherwise.
func (s *DocumentStore) Save(doc model.Document, expectedVersion int64) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := s.db.Exec(
		`UPDATE household_document
		 SET data = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = 1 AND version = ?`,
		string(data), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}

// Package inbox persists the append-only record log as a single JSON
// array document.
package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/recitevault/recitevault/internal/domain"
	"github.com/recitevault/recitevault/internal/domain/record"
	"github.com/recitevault/recitevault/internal/repository/vault"
)

// Repo serializes every read-modify-write of the record log behind a
// mutex. Concurrent naive append-read-write cycles would silently lose
// records under last-writer-wins.
type Repo struct {
	layout vault.Layout
	mu     sync.Mutex
}

// New creates an inbox record repository.
func New(layout vault.Layout) *Repo {
	return &Repo{layout: layout}
}

// List returns all records in stored order.
func (r *Repo) List(_ context.Context) ([]record.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Append adds a record to the log.
func (r *Repo) Append(_ context.Context, rec record.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	return r.save(append(records, rec))
}

// Update applies mutate to the record with the given id and persists the
// whole log. Returns domain.ErrRecordNotFound when the id is unknown.
func (r *Repo) Update(_ context.Context, id string, mutate func(*record.Record) error) (record.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return record.Record{}, err
	}
	for i := range records {
		if records[i].ID != id {
			continue
		}
		if err := mutate(&records[i]); err != nil {
			return record.Record{}, err
		}
		if err := r.save(records); err != nil {
			return record.Record{}, err
		}
		return records[i], nil
	}
	return record.Record{}, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
}

func (r *Repo) load() ([]record.Record, error) {
	data, err := os.ReadFile(r.layout.RecordsPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read record log: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var records []record.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: record log: %v", domain.ErrInvalidDocument, err)
	}
	return records, nil
}

func (r *Repo) save(records []record.Record) error {
	if err := os.MkdirAll(r.layout.ReportsDir(), 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	if records == nil {
		records = []record.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record log: %w", err)
	}
	if err := os.WriteFile(r.layout.RecordsPath(), data, 0o644); err != nil {
		return fmt.Errorf("write record log: %w", err)
	}
	return nil
}

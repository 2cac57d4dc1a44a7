// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package draft

import (
	"context"
	"sort"
	"sync"

	"github.com/bureau-foundation/glass/lib/clock"
)

// MemoryStore keeps drafts for the life of the process.
type MemoryStore struct {
	clock clock.Clock

	mu      sync.Mutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	content string
	Record
}

// NewMemoryStore returns an empty store stamped by clk.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	return &MemoryStore{clock: clk, records: make(map[string]memoryRecord)}
}

func (s *MemoryStore) HasDraft(_ context.Context, origin string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[Digest(origin)]
	return ok, nil
}

func (s *MemoryStore) GetDraft(_ context.Context, origin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[Digest(origin)]
	if !ok {
		return "", ErrNotFound
	}
	return record.content, nil
}

func (s *MemoryStore) SaveDraft(_ context.Context, content, origin string) error {
	if err := validateContent(content); err != nil {
		return err
	}
	digest := Digest(origin)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[digest] = memoryRecord{
		content: content,
		Record:  Record{Digest: digest, Size: len(content), UpdatedAt: s.clock.Now()},
	}
	return nil
}

func (s *MemoryStore) ClearDraft(_ context.Context, origin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, Digest(origin))
	return nil
}

// List returns every record, newest first.
func (s *MemoryStore) List(context.Context) ([]Record, error) {
	s.mu.Lock()
	records := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record.Record)
	}
	s.mu.Unlock()
	sort.Slice(records, func(i, j int) bool { return records[i].UpdatedAt.After(records[j].UpdatedAt) })
	return records, nil
}

package fakeapi

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is one stored entity row.
type Record map[string]any

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Store is the in-memory entity database behind the fake console API.
// Collections keep insertion order so paginated lists are stable.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

func NewStore() *Store {
	return &Store{collections: make(map[string][]Record)}
}

// Seed inserts records verbatim, assigning ids to records without one.
func (s *Store) Seed(entity string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		rec = rec.clone()
		if _, ok := rec["id"]; !ok {
			rec["id"] = uuid.NewString()
		}
		s.collections[entity] = append(s.collections[entity], rec)
	}
}

// List returns records matching every filter, compared as strings.
func (s *Store) List(entity string, filters map[string]string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.collections[entity] {
		if matches(rec, filters) {
			out = append(out, rec.clone())
		}
	}
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(entity, id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.collections[entity] {
		if rec["id"] == id {
			return rec.clone(), true
		}
	}
	return nil, false
}

// Create inserts a record, assigning id and timestamps.
func (s *Store) Create(entity string, rec Record) Record {
	rec = rec.clone()
	rec["id"] = uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	rec["created_at"] = now
	rec["updated_at"] = now

	s.mu.Lock()
	s.collections[entity] = append(s.collections[entity], rec)
	s.mu.Unlock()
	return rec.clone()
}

// Update merges the patch into the stored record.
func (s *Store) Update(entity, id string, patch Record) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.collections[entity] {
		if rec["id"] != id {
			continue
		}
		merged := rec.clone()
		for k, v := range patch {
			if k == "id" || k == "created_at" {
				continue
			}
			merged[k] = v
		}
		merged["updated_at"] = time.Now().UTC().Format(time.RFC3339)
		s.collections[entity][i] = merged
		return merged.clone(), true
	}
	return nil, false
}

// Delete removes the record with the given id.
func (s *Store) Delete(entity, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.collections[entity]
	for i, rec := range records {
		if rec["id"] == id {
			s.collections[entity] = append(records[:i:i], records[i+1:]...)
			return true
		}
	}
	return false
}

func matches(rec Record, filters map[string]string) bool {
	for key, want := range filters {
		got, ok := rec[key]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

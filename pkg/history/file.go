package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// document is the on-disk layout of a FileStore.
type document struct {
	Entries map[string][]*Entry `json:"entries"`
}

// FileStore keeps history in one JSON document, rewritten on every change.
type FileStore struct {
	mu   sync.Mutex
	path string
	doc  document
}

// OpenFile loads the history document at path. A missing file is an empty history.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, doc: document{Entries: map[string][]*Entry{}}}

	data, err := os.ReadFile(path) //nolint:gosec // configured history path
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if s.doc.Entries == nil {
		s.doc.Entries = map[string][]*Entry{}
	}
	return s, nil
}

// Path returns the document location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return errors.WrapParse("json", s.path, err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	return errors.WrapIO("write", s.path, os.WriteFile(s.path, data, constants.FilePermissions))
}

// Append adds e and saves the document.
func (s *FileStore) Append(e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Entries[e.Family] = append(s.doc.Entries[e.Family], e)
	return s.save()
}

// Last returns the most recent entry for family.
func (s *FileStore) Last(family string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.doc.Entries[family]
	if len(entries) == 0 {
		return nil, noHistory(family)
	}
	return entries[len(entries)-1], nil
}

// Pop removes the most recent entry for family and saves the document.
func (s *FileStore) Pop(family string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.doc.Entries[family]
	if len(entries) == 0 {
		return nil, noHistory(family)
	}
	last := entries[len(entries)-1]
	if len(entries) == 1 {
		delete(s.doc.Entries, family)
	} else {
		s.doc.Entries[family] = entries[:len(entries)-1]
	}
	if err := s.save(); err != nil {
		return nil, err
	}
	return last, nil
}

// List returns the entries of family, oldest first.
func (s *FileStore) List(family string) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Entry{}, s.doc.Entries[family]...), nil
}

// Families returns the families with at least one entry.
func (s *FileStore) Families() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.doc.Entries))
	for name, entries := range s.doc.Entries {
		if len(entries) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Total counts every entry.
func (s *FileStore) Total() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, entries := range s.doc.Entries {
		n += len(entries)
	}
	return n, nil
}

// Close is a no-op; every change is already on disk.
func (s *FileStore) Close() error { return nil }

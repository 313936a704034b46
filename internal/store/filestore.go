package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	specsyncerrors "specsync/pkg/errors"
)

// fileFormat is the on-disk JSON shape for the file-backed store.
type fileFormat struct {
	Version string            `json:"version"`
	Records map[string]Record `json:"records"`
}

// FileStore keeps checksum records in a single JSON file, rewritten
// atomically (write-to-temp-then-rename) on every update.
type FileStore struct {
	path    string
	mu      sync.RWMutex
	records map[string]Record
}

// NewFileStore creates a FileStore and loads any existing records from disk.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		records: make(map[string]Record),
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, specsyncerrors.NewStoreError("open", "", fmt.Errorf("create store directory: %w", err))
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, specsyncerrors.NewStoreError("open", "", err)
		}
	}

	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var file fileFormat
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse checksum store: %w", err)
	}

	if file.Records != nil {
		s.records = file.Records
	}
	return nil
}

// Get returns the record for a service, if one exists.
func (s *FileStore) Get(serviceName string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[serviceName]
	return rec, ok, nil
}

// Set writes a service's record and persists the whole file atomically.
func (s *FileStore) Set(serviceName string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, hadPrevious := s.records[serviceName]
	s.records[serviceName] = rec

	if err := s.save(); err != nil {
		// Roll the in-memory map back so memory and disk agree.
		if hadPrevious {
			s.records[serviceName] = previous
		} else {
			delete(s.records, serviceName)
		}
		return specsyncerrors.NewStoreError("set", serviceName, err)
	}
	return nil
}

// List returns a copy of all records, stale entries included.
func (s *FileStore) List() (map[string]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Record, len(s.records))
	for name, rec := range s.records {
		out[name] = rec
	}
	return out, nil
}

// Close is a no-op for the file-backed store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) save() error {
	file := fileFormat{
		Version: "1.0",
		Records: s.records,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checksum store: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temporary file: %w", err)
	}

	return nil
}

var _ ChecksumStore = (*FileStore)(nil)

// Package lock persists the hashlock ledger and compares committed entries
// against freshly computed ones.
package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"manifestlock/internal/domain"
)

// Store reads and writes the hashlock ledger at a fixed path.
type Store struct {
	Path string
}

// NewStore creates a store for the ledger at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the committed ledger. A missing file yields
// domain.ErrMissingLock so verify runs can surface it as a single aggregate
// failure.
func (s *Store) Load() (*domain.HashlockFile, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingLock, s.Path)
		}
		return nil, fmt.Errorf("read hashlock: %w", err)
	}

	var lf domain.HashlockFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse hashlock %s: %w", s.Path, err)
	}
	return &lf, nil
}

// Write regenerates the ledger wholesale from the given entries with a fresh
// generatedAt timestamp. Entries are sorted for diff stability and the write
// is atomic (temp file + rename). The previous ledger is never merged.
func (s *Store) Write(entries []domain.HashlockEntry) (*domain.HashlockFile, error) {
	// make yields a non-nil slice even for zero entries, so an empty ledger
	// renders as [] rather than null
	sorted := make([]domain.HashlockEntry, len(entries))
	copy(sorted, entries)
	domain.SortEntries(sorted)

	lf := &domain.HashlockFile{
		SpecVersion:   domain.LockSpecVersion,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		HashAlgorithm: domain.HashAlgorithm,
		Entries:       sorted,
	}

	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal hashlock: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp hashlock: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write hashlock: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write hashlock: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write hashlock: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to replace hashlock: %w", err)
	}
	return lf, nil
}

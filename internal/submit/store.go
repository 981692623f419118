package submit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"quickspend/internal/core"
)

// Marker is a submission that has not been confirmed by the server yet.
type Marker struct {
	Payload        core.NewExpense `json:"payload"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

// MarkerStore holds at most one Marker.
// Load returns nil when the slot is empty.
type MarkerStore interface {
	Load() (*Marker, error)
	Save(m Marker) error
	Clear() error
}

// FileStore keeps the marker in a JSON file so it survives restarts.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the marker. A missing file, unparsable content or a marker
// without a payload all read as an empty slot.
func (s *FileStore) Load() (*Marker, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending marker: %w", err)
	}

	var raw struct {
		Payload        *core.NewExpense `json:"payload"`
		IdempotencyKey string           `json:"idempotencyKey"`
	}
	if err := json.Unmarshal(data, &raw); err != nil || raw.Payload == nil {
		return nil, nil
	}
	return &Marker{Payload: *raw.Payload, IdempotencyKey: raw.IdempotencyKey}, nil
}

// Save writes the marker to a temp file and renames it into place.
func (s *FileStore) Save(m Marker) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create marker file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode marker: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close marker file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace marker file: %w", err)
	}
	return nil
}

// Clear removes the marker. Clearing an empty slot is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove pending marker: %w", err)
	}
	return nil
}

// MemoryStore is an in-process MarkerStore.
type MemoryStore struct {
	mu     sync.Mutex
	marker *Marker
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.marker == nil {
		return nil, nil
	}
	m := *s.marker
	return &m, nil
}

func (s *MemoryStore) Save(m Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = &m
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = nil
	return nil
}

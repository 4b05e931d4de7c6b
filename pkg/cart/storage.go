package cart

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/ecomcore/storefront/internal/domain"
)

// Storage persists the cart between sessions. A cart that was never saved
// and a cart that was cleared both surface as ErrNotFound; an empty slice is
// never written back, Delete removes the record entirely.
type Storage interface {
	Load() ([]domain.CartLine, error)
	Save(lines []domain.CartLine) error
	Delete() error
}

var ErrNotFound = errors.New("no stored cart")

// MemoryStorage keeps the cart for the lifetime of the process.
type MemoryStorage struct {
	m     sync.Mutex
	lines []domain.CartLine
	saved bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() ([]domain.CartLine, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if !s.saved {
		return nil, ErrNotFound
	}
	return append([]domain.CartLine(nil), s.lines...), nil
}

func (s *MemoryStorage) Save(lines []domain.CartLine) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.lines = append([]domain.CartLine(nil), lines...)
	s.saved = true
	return nil
}

func (s *MemoryStorage) Delete() error {
	s.m.Lock()
	defer s.m.Unlock()
	s.lines = nil
	s.saved = false
	return nil
}

// FileStorage writes the cart through to a JSON file so it survives restarts.
type FileStorage struct {
	m    sync.Mutex
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Load() ([]domain.CartLine, error) {
	s.m.Lock()
	defer s.m.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *FileStorage) Save(lines []domain.CartLine) error {
	s.m.Lock()
	defer s.m.Unlock()

	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *FileStorage) Delete() error {
	s.m.Lock()
	defer s.m.Unlock()

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

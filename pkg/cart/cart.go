package cart

import (
	"errors"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ecomcore/storefront/internal/domain"
)

// Store is the client-held shopping cart. Every mutation is written through
// to Storage immediately so a crash never loses more than the in-flight call.
type Store struct {
	m       sync.Mutex
	lines   []domain.CartLine
	storage Storage
}

// NewStore loads any previously saved cart from storage. A missing record is
// a fresh cart, not an error.
func NewStore(storage Storage) (*Store, error) {
	lines, err := storage.Load()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &Store{lines: lines, storage: storage}, nil
}

// Add puts a product in the cart. Adding a product that is already present
// bumps its quantity by one.
func (s *Store) Add(productID int64, name string, price float64) error {
	s.m.Lock()
	defer s.m.Unlock()

	found := false
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, domain.CartLine{
			ProductID: productID,
			Name:      name,
			Price:     price,
			Quantity:  1,
		})
	}

	return s.storage.Save(s.lines)
}

// Remove drops the product's line entirely, whatever its quantity.
func (s *Store) Remove(productID int64) error {
	s.m.Lock()
	defer s.m.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return s.storage.Save(s.lines)
		}
	}
	return nil
}

// Clear empties the cart and removes the stored record. After Clear the
// storage holds nothing, not an empty list.
func (s *Store) Clear() error {
	s.m.Lock()
	defer s.m.Unlock()

	s.lines = nil
	return s.storage.Delete()
}

// Lines returns a copy of the cart contents.
func (s *Store) Lines() []domain.CartLine {
	s.m.Lock()
	defer s.m.Unlock()
	return append([]domain.CartLine(nil), s.lines...)
}

// Total sums price times quantity over the cart. Lines with a non-finite
// price are skipped so one bad record cannot poison the displayed total; the
// server reprices from its catalog anyway.
func (s *Store) Total() float64 {
	s.m.Lock()
	defer s.m.Unlock()

	var total float64
	for _, line := range s.lines {
		if math.IsNaN(line.Price) || math.IsInf(line.Price, 0) {
			log.Printf("skipping line with non-finite price, product %d", line.ProductID)
			continue
		}
		total += line.Price * float64(line.Quantity)
	}
	return total
}

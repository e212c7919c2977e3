package cart

import (
	"slices"

	"storefront/internal/domain"
)

type opKind int

const (
	opAdd opKind = iota
	opRemove
	opIncrease
	opDecrease
	opClear
)

type mutation struct {
	kind    opKind
	product domain.Product
	id      string
	// count is the number of units opAdd adds.
	count int
}

// applyLocked applies m to s.lines and reports whether anything changed.
func (s *Store) applyLocked(m mutation) bool {
	switch m.kind {
	case opAdd:
		if m.count < 1 {
			return false
		}
		if i := s.indexLocked(m.id); i >= 0 {
			s.lines[i].Quantity += m.count
			return true
		}
		s.lines = append(s.lines, domain.CartLine{Product: m.product, Quantity: m.count})
		return true
	case opRemove:
		i := s.indexLocked(m.id)
		if i < 0 {
			return false
		}
		s.lines = slices.Delete(s.lines, i, i+1)
		return true
	case opIncrease:
		i := s.indexLocked(m.id)
		if i < 0 {
			return false
		}
		s.lines[i].Quantity++
		return true
	case opDecrease:
		i := s.indexLocked(m.id)
		if i < 0 {
			return false
		}
		if s.lines[i].Quantity <= 1 {
			s.lines = slices.Delete(s.lines, i, i+1)
			return true
		}
		s.lines[i].Quantity--
		return true
	case opClear:
		if len(s.lines) == 0 {
			return false
		}
		s.lines = nil
		return true
	}
	return false
}

func (s *Store) indexLocked(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Package staging holds the editable pre-commit state of parsed rows. A
// staging list is created fresh per parse, mutated freely by the reviewing
// human, and discarded after commit; it is never persisted mid-edit.
package staging

import (
	"fmt"

	"freshops/internal"
)

// OrderStaging is the reviewable row list of a parsed order. Rows with an
// empty product code are unresolved; they block commit until resolved or
// removed.
type OrderStaging struct {
	items []internal.ParsedOrderItem
}

func NewOrderStaging() *OrderStaging {
	return &OrderStaging{items: []internal.ParsedOrderItem{}}
}

func (s *OrderStaging) Len() int {
	return len(s.items)
}

func (s *OrderStaging) Items() []internal.ParsedOrderItem {
	return s.items
}

func (s *OrderStaging) Append(item internal.ParsedOrderItem) {
	s.items = append(s.items, item)
}

// AddBlank appends an empty row for manual entry.
func (s *OrderStaging) AddBlank() {
	s.items = append(s.items, internal.ParsedOrderItem{Quantity: 1})
}

func (s *OrderStaging) Remove(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *OrderStaging) SetQuantity(i int, qty float64) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.items[i].Quantity = qty
	return nil
}

func (s *OrderStaging) SetUOM(i int, uom string) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.items[i].UOM = uom
	return nil
}

func (s *OrderStaging) SetPrice(i int, price float64) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.items[i].Price = price
	return nil
}

// AssignProduct manually resolves a row to a catalog product.
func (s *OrderStaging) AssignProduct(i int, product internal.ProductRecord) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.items[i].ProductCode = product.Code
	s.items[i].ProductName = product.Name
	if s.items[i].UOM == "" {
		s.items[i].UOM = product.BaseUOM
	}
	return nil
}

func (s *OrderStaging) UnresolvedCount() int {
	count := 0
	for _, item := range s.items {
		if !item.Resolved() {
			count++
		}
	}
	return count
}

// DiscardUnresolved removes every unresolved row and returns how many were
// dropped. This is the explicit acknowledgment a caller may use instead of
// resolving rows one by one; commit never drops rows silently.
func (s *OrderStaging) DiscardUnresolved() int {
	kept := s.items[:0]
	dropped := 0
	for _, item := range s.items {
		if item.Resolved() {
			kept = append(kept, item)
		} else {
			dropped++
		}
	}
	s.items = kept
	return dropped
}

func (s *OrderStaging) check(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("no staged row at index %d", i)
	}
	return nil
}

// PriceStaging is the reviewable row list of a parsed price list. Unlike
// order staging it never carries unresolved rows; the parser already dropped
// them.
type PriceStaging struct {
	items []internal.ParsedPriceItem
}

func NewPriceStaging() *PriceStaging {
	return &PriceStaging{items: []internal.ParsedPriceItem{}}
}

func (s *PriceStaging) Len() int {
	return len(s.items)
}

func (s *PriceStaging) Items() []internal.ParsedPriceItem {
	return s.items
}

func (s *PriceStaging) Append(item internal.ParsedPriceItem) {
	s.items = append(s.items, item)
}

func (s *PriceStaging) Remove(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("no staged row at index %d", i)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *PriceStaging) SetPrice(i int, price float64) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("no staged row at index %d", i)
	}
	s.items[i].Price = price
	return nil
}

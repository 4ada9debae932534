package staging

import (
	"fmt"

	"freshops/internal"
)

// OrderWriter is the slice of the record store a commit needs.
type OrderWriter interface {
	InsertOrder(customerID int64, deliveryDate *string, items []internal.ParsedOrderItem) (int64, error)
}

type PriceWriter interface {
	InsertPriceRecords(supplier string, items []internal.ParsedPriceItem) (int, error)
}

// Commit converts the staged rows into order inserts. It refuses to run
// while unresolved rows remain: the caller must resolve each one or discard
// it explicitly first. Orders account for every requested item; this gate is
// intentionally stricter than the price-list path.
func (s *OrderStaging) Commit(w OrderWriter, customerID int64, deliveryDate *string) (int64, error) {
	if n := s.UnresolvedCount(); n > 0 {
		return 0, fmt.Errorf("cannot commit: %d unresolved row(s) need resolution or explicit discard", n)
	}
	if len(s.items) == 0 {
		return 0, fmt.Errorf("cannot commit: no staged rows")
	}
	return w.InsertOrder(customerID, deliveryDate, s.items)
}

func (s *PriceStaging) Commit(w PriceWriter, supplier string) (int, error) {
	if len(s.items) == 0 {
		return 0, nil
	}
	return w.InsertPriceRecords(supplier, s.items)
}

package staging

import (
	"strings"
	"testing"

	"freshops/internal"
)

type fakeOrderWriter struct {
	customerID   int64
	deliveryDate *string
	items        []internal.ParsedOrderItem
	calls        int
}

func (w *fakeOrderWriter) InsertOrder(customerID int64, deliveryDate *string, items []internal.ParsedOrderItem) (int64, error) {
	w.calls++
	w.customerID = customerID
	w.deliveryDate = deliveryDate
	w.items = items
	return 42, nil
}

type fakePriceWriter struct {
	supplier string
	items    []internal.ParsedPriceItem
	calls    int
}

func (w *fakePriceWriter) InsertPriceRecords(supplier string, items []internal.ParsedPriceItem) (int, error) {
	w.calls++
	w.supplier = supplier
	w.items = items
	return len(items), nil
}

func resolvedItem(code string) internal.ParsedOrderItem {
	return internal.ParsedOrderItem{RawLine: code, Quantity: 1, UOM: "pcs", ProductCode: code, ProductName: code}
}

func TestOrderStagingEdits(t *testing.T) {
	s := NewOrderStaging()
	s.Append(resolvedItem("AVO-01"))
	s.Append(internal.ParsedOrderItem{RawLine: "mystery", Quantity: 1})

	if err := s.SetQuantity(0, 3); err != nil {
		t.Fatal(err)
	}
	if err := s.SetUOM(0, "ctn"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPrice(0, 9.5); err != nil {
		t.Fatal(err)
	}
	got := s.Items()[0]
	if got.Quantity != 3 || got.UOM != "ctn" || got.Price != 9.5 {
		t.Fatalf("row 0 = %+v", got)
	}

	if err := s.SetQuantity(5, 1); err == nil {
		t.Fatal("out-of-range edit must fail")
	}

	s.AddBlank()
	if s.Len() != 3 || s.Items()[2].Quantity != 1 {
		t.Fatalf("items = %+v", s.Items())
	}

	if err := s.AssignProduct(1, internal.ProductRecord{Code: "TOM-01", Name: "Tomato", BaseUOM: "kg"}); err != nil {
		t.Fatal(err)
	}
	if !s.Items()[1].Resolved() || s.Items()[1].UOM != "kg" {
		t.Fatalf("row 1 = %+v", s.Items()[1])
	}

	if err := s.Remove(2); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestOrderStagingCommitGate(t *testing.T) {
	s := NewOrderStaging()
	s.Append(resolvedItem("AVO-01"))
	s.Append(internal.ParsedOrderItem{RawLine: "mystery", Quantity: 2})

	w := &fakeOrderWriter{}
	if _, err := s.Commit(w, 1, nil); err == nil || !strings.Contains(err.Error(), "unresolved") {
		t.Fatalf("err = %v", err)
	}
	if w.calls != 0 {
		t.Fatal("writer must not be touched while rows are unresolved")
	}

	if dropped := s.DiscardUnresolved(); dropped != 1 {
		t.Fatalf("dropped = %d", dropped)
	}

	orderID, err := s.Commit(w, 1, nil)
	if err != nil || orderID != 42 {
		t.Fatalf("orderID=%d err=%v", orderID, err)
	}
	if w.calls != 1 || w.customerID != 1 || len(w.items) != 1 {
		t.Fatalf("writer = %+v", w)
	}
}

func TestOrderStagingCommitEmpty(t *testing.T) {
	s := NewOrderStaging()
	w := &fakeOrderWriter{}
	if _, err := s.Commit(w, 1, nil); err == nil {
		t.Fatal("empty staging must not commit")
	}
}

func TestPriceStagingCommit(t *testing.T) {
	s := NewPriceStaging()
	s.Append(internal.ParsedPriceItem{RawLine: "Carrot 4.5kg 15", ProductCode: "CAR-01", ProductName: "Carrot", UOM: "4.5kg", Price: 15})
	s.Append(internal.ParsedPriceItem{RawLine: "Tomato 1kg rm6.80", ProductCode: "TOM-01", ProductName: "Tomato", UOM: "1kg", Price: 6.8})

	if err := s.SetPrice(1, 7); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(5); err == nil {
		t.Fatal("out-of-range remove must fail")
	}

	w := &fakePriceWriter{}
	count, err := s.Commit(w, "Evergreen Farm")
	if err != nil || count != 2 {
		t.Fatalf("count=%d err=%v", count, err)
	}
	if w.supplier != "Evergreen Farm" || w.items[1].Price != 7 {
		t.Fatalf("writer = %+v", w)
	}
}

func TestPriceStagingCommitEmptyIsNoop(t *testing.T) {
	s := NewPriceStaging()
	w := &fakePriceWriter{}
	count, err := s.Commit(w, "Evergreen Farm")
	if err != nil || count != 0 || w.calls != 0 {
		t.Fatalf("count=%d err=%v calls=%d", count, err, w.calls)
	}
}

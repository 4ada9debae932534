package parse

import "testing"

func TestCustomerResolveExactWithBranchBonus(t *testing.T) {
	r := NewCustomerResolver(testConfig())

	customer, score := r.Resolve("HEYTEA GENTING", testCustomers())
	if customer == nil || customer.ID != 1 {
		t.Fatalf("got %+v", customer)
	}
	// Exact match plus the capped branch bonus.
	if score != 120 {
		t.Fatalf("score = %v, want 120", score)
	}
}

func TestCustomerResolveBranchDisambiguates(t *testing.T) {
	r := NewCustomerResolver(testConfig())

	customer, _ := r.Resolve("heytea pavilion order", testCustomers())
	if customer == nil || customer.ID != 2 {
		t.Fatalf("branch token should pick Pavilion, got %+v", customer)
	}
}

func TestCustomerResolveBelowThreshold(t *testing.T) {
	r := NewCustomerResolver(testConfig())

	if customer, _ := r.Resolve("completely unrelated words", testCustomers()); customer != nil {
		t.Fatalf("expected no match, got %+v", customer)
	}
	if customer, _ := r.Resolve("   ", testCustomers()); customer != nil {
		t.Fatalf("blank line must not resolve, got %+v", customer)
	}
}

func TestCustomerResolveFirstSeenTie(t *testing.T) {
	r := NewCustomerResolver(testConfig())

	// "heytea" alone is contained by both branches and matches neither
	// branch bonus; the first registry entry wins the tie.
	customer, _ := r.Resolve("heytea", testCustomers())
	if customer == nil || customer.ID != 1 {
		t.Fatalf("tie should keep first registry entry, got %+v", customer)
	}
}

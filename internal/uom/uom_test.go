package uom

import (
	"regexp"
	"testing"
)

func TestPatternPrefersLongestToken(t *testing.T) {
	v := New([]string{"g", "kg", "ctn"})
	re := regexp.MustCompile(`^` + v.Pattern())
	if got := re.FindString("kg"); got != "kg" {
		t.Fatalf("got %q", got)
	}
	if got := re.FindString("g"); got != "g" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalCaseInsensitive(t *testing.T) {
	v := New([]string{"kg", "CTN"})
	if v.Canonical("Kg") != "kg" || v.Canonical("CTN") != "ctn" {
		t.Fatal("expected case-insensitive membership")
	}
	if v.Canonical("ton") != "" {
		t.Fatal("ton is not in the vocabulary")
	}
}

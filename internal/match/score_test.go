package match

import (
	"testing"

	"freshops/internal/util"
)

func TestTokenScorerPrecedence(t *testing.T) {
	var s TokenScorer

	if got := s.Score("heytea genting", "heytea genting"); got != ScoreExact {
		t.Fatalf("exact: got %v", got)
	}
	if got := s.Score("heytea", "heytea genting"); got != ScoreContain {
		t.Fatalf("containment: got %v", got)
	}
	// Overlap: two of two input tokens present -> full partial ceiling.
	if got := s.Score("tealive sunway", "sunway pyramid tealive outlet"); got != PartialCeiling {
		t.Fatalf("overlap: got %v", got)
	}
	// One of two tokens present -> half of it.
	if got := s.Score("tealive sunway", "sunway pyramid starling"); got != PartialCeiling/2 {
		t.Fatalf("half overlap: got %v", got)
	}
	if got := s.Score("zzz qqq", "sunway pyramid"); got != 0 {
		t.Fatalf("disjoint: got %v", got)
	}
}

func TestTokenScorerSubstringEitherDirection(t *testing.T) {
	var s TokenScorer
	// "mang" matches as a substring of the candidate token "mango".
	if got := s.Score("mang xx", "mango yy"); got != PartialCeiling/2 {
		t.Fatalf("got %v", got)
	}
}

func TestLengthScorerWeighting(t *testing.T) {
	var s LengthScorer

	input := util.Normalize("mango susu")
	candidate := util.Normalize("premium mango milk")
	// "mango" (5 chars) verbatim, "susu" (4) unmatched: 5/9 * 60.
	want := 5.0 / 9.0 * PartialCeiling
	if got := s.Score(input, candidate); got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestLengthScorerSubstringCredit(t *testing.T) {
	var s LengthScorer

	// "avoc" (4 chars) is a substring of "avocado": credited at 80%.
	input := "avoc xx"
	candidate := "avocado farm"
	want := (SubstringCredit * 4) / 6.0 * PartialCeiling
	if got := s.Score(input, candidate); got != want {
		t.Fatalf("got %v want %v", got, want)
	}

	// Two-character tokens never earn substring credit.
	if got := s.Score("av", "avocado"); got != ScoreContain {
		// "av" is contained in "avocado" at the string level, so the
		// containment rule short-circuits first.
		t.Fatalf("got %v", got)
	}
	if got := s.Score("av zz", "avocado farm"); got != 0 {
		t.Fatalf("short substring credited: got %v", got)
	}
}

func TestExactBeatsEverything(t *testing.T) {
	var s LengthScorer
	if got := s.Score("carrot", "carrot"); got != ScoreExact {
		t.Fatalf("got %v", got)
	}
}

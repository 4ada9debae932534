package util

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"HeyTea - Genting", "heytea genting"},
		{"  Mango   Gold  Susu ", "mango gold susu"},
		{"carrot (australia)", "carrot australia"},
		{"A&W  Outlet, KL", "a w outlet kl"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.input); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	got := Tokenize("A&W Mango 5")
	want := []string{"mango"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("\r\nHEYTEA GENTING\n\n2CTN MANGO\n")
	if len(got) != 2 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0] != "HEYTEA GENTING" || got[1] != "2CTN MANGO" {
		t.Fatalf("got %v", got)
	}
}

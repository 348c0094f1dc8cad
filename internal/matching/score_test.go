package matching

import "testing"

func TestRatio(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want int
	}{
		{"Arsenal", "arsenal", 100},
		{"Mohamed Salah", "Momo Salah", 78},
		{"Mohamed Salah", "M. Salah", 67},
		{"", "", 0},
		{"abc", "", 0},
	}
	for _, tc := range cases {
		if got := Ratio(tc.a, tc.b); got != tc.want {
			t.Fatalf("Ratio(%q,%q)=%d want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestPartialRatio(t *testing.T) {
	t.Parallel()

	if got := PartialRatio("Manchester City", "city"); got != 100 {
		t.Fatalf("expected substring to score 100, got %d", got)
	}
	if got := PartialRatio("Mohamed Salah", "M. Salah"); got != 75 {
		t.Fatalf("unexpected partial ratio: %d", got)
	}
	if got := PartialRatio("", "anything"); got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}
}

func TestTokenSortRatioIgnoresOrderAndPunctuation(t *testing.T) {
	t.Parallel()

	if got := TokenSortRatio("Son Heung-min", "Heung-Min Son"); got != 100 {
		t.Fatalf("expected 100 for reordered tokens, got %d", got)
	}
}

func TestFoldStripsAccents(t *testing.T) {
	t.Parallel()

	if got := Ratio("Martin Ødegaard", "Martin Odegaard"); got != 100 {
		t.Fatalf("expected accent-insensitive match, got %d", got)
	}
	if got := Ratio("Enzo Fernández", "Enzo Fernandez"); got != 100 {
		t.Fatalf("expected accent-insensitive match, got %d", got)
	}
}

package core

import "testing"

func TestDisplay(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  M&A Deal  ", "M&A Deal"},
		{"M&A    Deal", "M&A Deal"},
		{"M&A\t Deal", "M&A Deal"},
		{"M&A　Deal", "M&A Deal"}, // ideographic space
		{"", ""},
		{"   ", ""},
		{"IPO", "IPO"},
	}
	for i, tc := range cases {
		if got := Display(tc.in); got != tc.want {
			t.Fatalf("case %d: Display(%q) = %q, want %q", i, tc.in, got, tc.want)
		}
	}
}

func TestKeyMerging(t *testing.T) {
	// Pairs differing only in case, whitespace, punctuation or character
	// width must share a key.
	same := [][2]string{
		{"M&A Deal", "m&a   deal"},
		{"M&A Deal", "MA DEAL"},
		{"Corporate Matter", "corporate-matter"},
		{"ＩＰＯ", "ipo"},          // full-width letters
		{"Ａ＆Ｂ", "ab"},           // full-width punctuation dropped
		{"项目　甲", "项目甲"},        // ideographic space dropped
		{"Deal (2025)", "deal 2025"},
	}
	for i, p := range same {
		if Key(p[0]) != Key(p[1]) {
			t.Fatalf("case %d: Key(%q)=%q, Key(%q)=%q; want equal", i, p[0], Key(p[0]), p[1], Key(p[1]))
		}
		if !FieldsMatch(p[0], p[1]) {
			t.Fatalf("case %d: FieldsMatch(%q, %q) = false", i, p[0], p[1])
		}
	}

	diff := [][2]string{
		{"IPO", "M&A"},
		{"Deal A", "Deal B"},
		{"项目甲", "项目乙"},
	}
	for i, p := range diff {
		if FieldsMatch(p[0], p[1]) {
			t.Fatalf("case %d: FieldsMatch(%q, %q) = true; want false", i, p[0], p[1])
		}
	}
}

func TestKeyEmpty(t *testing.T) {
	if Key("  -- ()  ") != "" {
		t.Fatalf("punctuation-only input should key to empty")
	}
}

package pinyin

import "testing"

func TestStripTones(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"nǐ hǎo", "ni hao"},
		{"nǐmen", "nimen"},
		{"lǜsè", "lüse"},
		{"ni3 hao3", "ni hao"},
		{"ma", "ma"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StripTones(tc.in); got != tc.want {
			t.Fatalf("StripTones(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripTonesAllVowels(t *testing.T) {
	if got := StripTones("āáǎàēéěèīíǐìōóǒòūúǔùǖǘǚǜ"); got != "aaaaeeeeiiiioooouuuuüüüü" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

// Package pinyin normalizes pinyin strings for comparison.
package pinyin

import "strings"

// toneMap maps each toned vowel to its base vowel.
var toneMap = map[rune]rune{
	'ā': 'a', 'á': 'a', 'ǎ': 'a', 'à': 'a',
	'ē': 'e', 'é': 'e', 'ě': 'e', 'è': 'e',
	'ī': 'i', 'í': 'i', 'ǐ': 'i', 'ì': 'i',
	'ō': 'o', 'ó': 'o', 'ǒ': 'o', 'ò': 'o',
	'ū': 'u', 'ú': 'u', 'ǔ': 'u', 'ù': 'u',
	'ǖ': 'ü', 'ǘ': 'ü', 'ǚ': 'ü', 'ǜ': 'ü',
}

// StripTones replaces toned vowels with their base vowels and drops tone
// digits, so "nǐ hǎo" and "ni3 hao3" both normalize to "ni hao".
func StripTones(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if base, ok := toneMap[r]; ok {
			b.WriteRune(base)
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

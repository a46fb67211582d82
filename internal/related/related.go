// Package related finds catalog words related to a query word.
package related

import (
	"github.com/hmori/shengci/internal/model"
	"github.com/hmori/shengci/internal/pinyin"
)

// Finder looks up related words over a fixed corpus.
type Finder struct {
	words []model.Word
}

// NewFinder builds a finder over the full catalog word list.
func NewFinder(words []model.Word) *Finder {
	return &Finder{words: words}
}

// Find returns words related to the query: sharing at least one character of
// the written form, or sharing the tone-stripped pronunciation. The query
// itself is excluded; result order follows the corpus.
func (f *Finder) Find(query model.Word) []model.Word {
	queryChars := runeSet(query.Simplified)
	queryBase := pinyin.StripTones(query.Pinyin)

	var out []model.Word
	for _, word := range f.words {
		if word.ID == query.ID {
			continue
		}
		if sharesRune(word.Simplified, queryChars) || pinyin.StripTones(word.Pinyin) == queryBase {
			out = append(out, word)
		}
	}
	return out
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

func sharesRune(s string, set map[rune]struct{}) bool {
	for _, r := range s {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

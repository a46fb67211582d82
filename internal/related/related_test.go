package related

import (
	"testing"

	"github.com/hmori/shengci/internal/model"
)

func corpus() []model.Word {
	return []model.Word{
		{ID: 1, Simplified: "你好", Pinyin: "nǐ hǎo", Japanese: "こんにちは"},
		{ID: 2, Simplified: "你们", Pinyin: "nǐmen", Japanese: "あなたたち"},
		{ID: 3, Simplified: "学生", Pinyin: "xuésheng", Japanese: "学生"},
		{ID: 4, Simplified: "马", Pinyin: "mǎ", Japanese: "馬"},
		{ID: 5, Simplified: "吗", Pinyin: "ma", Japanese: "〜か"},
	}
}

func TestFindSharedCharacter(t *testing.T) {
	f := NewFinder(corpus())
	got := f.Find(corpus()[0])
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected [你们], got %+v", got)
	}
}

func TestFindSharedCharacterIsSymmetric(t *testing.T) {
	f := NewFinder(corpus())
	got := f.Find(corpus()[1])
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected [你好], got %+v", got)
	}
}

func TestFindHomophone(t *testing.T) {
	f := NewFinder(corpus())
	got := f.Find(corpus()[3])
	if len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("expected toneless homophone 吗, got %+v", got)
	}
}

func TestFindExcludesSelf(t *testing.T) {
	f := NewFinder(corpus())
	for _, w := range corpus() {
		for _, rel := range f.Find(w) {
			if rel.ID == w.ID {
				t.Fatalf("query word %d returned itself", w.ID)
			}
		}
	}
}

func TestFindNoRelations(t *testing.T) {
	f := NewFinder(corpus())
	if got := f.Find(corpus()[2]); len(got) != 0 {
		t.Fatalf("expected no relations for 学生, got %+v", got)
	}
}

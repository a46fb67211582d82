package catalog

import "testing"

const sampleDoc = `{
  "lessons": [
    {
      "lesson": 1,
      "title": "第1課",
      "words": [
        {"id": 1, "simplified": "你好", "pinyin": "nǐ hǎo", "japanese": "こんにちは", "pos": "挨拶"},
        {"id": 2, "simplified": "你们", "pinyin": "nǐmen", "japanese": "あなたたち", "pos": "代詞"}
      ]
    },
    {
      "lesson": 2,
      "title": "第2課",
      "words": [
        {"id": 3, "simplified": "学生", "pinyin": "xuésheng", "japanese": "学生", "pos": "名詞"}
      ]
    }
  ]
}`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	if len(c.Lessons()) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(c.Lessons()))
	}
	words := c.Words()
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	if words[0].Lesson != 1 || words[2].Lesson != 2 {
		t.Fatalf("lesson ids not propagated: %+v", words)
	}
	w, ok := c.WordByID(3)
	if !ok || w.Simplified != "学生" {
		t.Fatalf("unexpected word for id 3: %+v", w)
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	doc := `{"lessons":[{"lesson":1,"title":"a","words":[
		{"id":1,"simplified":"你","pinyin":"nǐ","japanese":"あなた","pos":"代詞"},
		{"id":1,"simplified":"好","pinyin":"hǎo","japanese":"よい","pos":"形容詞"}]}]}`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	if _, err := Parse([]byte(`{"lessons":[]}`)); err == nil {
		t.Fatalf("expected empty catalog error")
	}
}

func TestFilter(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	words := c.Filter([]int{1}, map[int64]bool{2: true})
	if len(words) != 1 || words[0].ID != 1 {
		t.Fatalf("unexpected filter result: %+v", words)
	}
	if got := c.Filter([]int{3}, nil); len(got) != 0 {
		t.Fatalf("expected empty result for unknown lesson, got %+v", got)
	}
}

func TestTitles(t *testing.T) {
	c, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	if got := c.Titles([]int{2, 1, 2}); got != "第1課, 第2課" {
		t.Fatalf("unexpected titles: %q", got)
	}
	if got := c.Titles([]int{9}); got != "Lesson 9" {
		t.Fatalf("unexpected fallback title: %q", got)
	}
}

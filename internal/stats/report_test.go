package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hmori/shengci/internal/catalog"
	"github.com/hmori/shengci/internal/model"
	"github.com/hmori/shengci/internal/store"
)

const testCatalog = `{
  "lessons": [
    {
      "lesson": 1,
      "title": "第1課",
      "words": [
        {"id": 1, "simplified": "你好", "pinyin": "nǐ hǎo", "japanese": "こんにちは", "pos": "挨拶"},
        {"id": 2, "simplified": "你们", "pinyin": "nǐmen", "japanese": "あなたたち", "pos": "代詞"},
        {"id": 3, "simplified": "学生", "pinyin": "xuésheng", "japanese": "学生", "pos": "名詞"}
      ]
    }
  ]
}`

func TestBuildReport(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "shengci.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	at := time.Unix(0, 0)
	// Word 1: 3/3 correct. Word 2: 1/2. Word 3: never attempted.
	for i := 0; i < 3; i++ {
		if err := st.RecordFeedback(ctx, 1, true, at); err != nil {
			t.Fatalf("record feedback: %v", err)
		}
	}
	if err := st.RecordFeedback(ctx, 2, true, at); err != nil {
		t.Fatalf("record feedback: %v", err)
	}
	if err := st.RecordFeedback(ctx, 2, false, at); err != nil {
		t.Fatalf("record feedback: %v", err)
	}

	report, err := BuildReport(ctx, st, cat, []int{1}, 10)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Correct != 4 || report.Incorrect != 1 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if len(report.PerPOS) != 2 {
		t.Fatalf("expected 2 POS groups, got %+v", report.PerPOS)
	}
	if report.PerPOS[0].POS != "代詞" && report.PerPOS[1].POS != "代詞" {
		t.Fatalf("missing POS group: %+v", report.PerPOS)
	}
	// Only word 2 is weak: word 1 is at 100, word 3 is sentinel.
	if len(report.WeakWords) != 1 || report.WeakWords[0].Word.ID != 2 {
		t.Fatalf("unexpected weak words: %+v", report.WeakWords)
	}
	if report.WeakWords[0].Text != "50% (1/2)" {
		t.Fatalf("unexpected weak text: %q", report.WeakWords[0].Text)
	}

	var buf bytes.Buffer
	if err := RenderReport(&buf, report); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Overall accuracy: 80% (4/5)") {
		t.Fatalf("missing overall line: %q", out)
	}
	if !strings.Contains(out, "你们") {
		t.Fatalf("weak word missing from output: %q", out)
	}
}

func TestWeakWordsOrderingAndTruncation(t *testing.T) {
	words := []model.Word{
		{ID: 1, Simplified: "一"},
		{ID: 2, Simplified: "二"},
		{ID: 3, Simplified: "三"},
		{ID: 4, Simplified: "四"},
	}
	stats := map[int64]model.WordStat{
		1: {WordID: 1, Correct: 3, Incorrect: 1}, // 75
		2: {WordID: 2, Correct: 1, Incorrect: 1}, // 50
		3: {WordID: 3, Correct: 3, Incorrect: 0}, // 100, excluded
		// 4 unattempted, sentinel, excluded
	}
	weak := WeakWords(words, stats, 0)
	if len(weak) != 2 || weak[0].Word.ID != 2 || weak[1].Word.ID != 1 {
		t.Fatalf("unexpected weak ordering: %+v", weak)
	}
	if truncated := WeakWords(words, stats, 1); len(truncated) != 1 || truncated[0].Word.ID != 2 {
		t.Fatalf("unexpected truncation: %+v", truncated)
	}
}

func TestWeakWordsStable(t *testing.T) {
	words := []model.Word{
		{ID: 1, Simplified: "甲"},
		{ID: 2, Simplified: "乙"},
		{ID: 3, Simplified: "丙"},
	}
	stats := map[int64]model.WordStat{
		1: {WordID: 1, Correct: 1, Incorrect: 1},
		2: {WordID: 2, Correct: 2, Incorrect: 2},
		3: {WordID: 3, Correct: 1, Incorrect: 3},
	}
	first := WeakWords(words, stats, 0)
	second := WeakWords(words, stats, 0)
	for i := range first {
		if first[i].Word.ID != second[i].Word.ID {
			t.Fatalf("weak ordering not deterministic: %+v vs %+v", first, second)
		}
	}
	// Ties (words 1 and 2, both 50) keep catalog order.
	if first[1].Word.ID != 1 || first[2].Word.ID != 2 {
		t.Fatalf("tie did not keep catalog order: %+v", first)
	}
}

func TestHistoryAccuracySeries(t *testing.T) {
	records := []model.PracticeRecord{
		{ID: 2, Accuracy: 80},
		{ID: 1, Accuracy: 40},
	}
	values := HistoryAccuracySeries(records)
	if len(values) != 2 || values[0] != 40 || values[1] != 80 {
		t.Fatalf("expected oldest-first series, got %v", values)
	}
}

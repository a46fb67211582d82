package session

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/hmori/shengci/internal/catalog"
	"github.com/hmori/shengci/internal/model"
	"github.com/hmori/shengci/internal/related"
)

const testCatalog = `{
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
        {"id": 3, "simplified": "学生", "pinyin": "xuésheng", "japanese": "学生", "pos": "名詞"},
        {"id": 4, "simplified": "老师", "pinyin": "lǎoshī", "japanese": "先生", "pos": "名詞"}
      ]
    }
  ]
}`

type feedbackCall struct {
	wordID  int64
	correct bool
}

type fakeRecorder struct {
	feedback []feedbackCall
	reviews  map[int64]bool
	records  []model.PracticeRecord
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{reviews: map[int64]bool{}}
}

func (f *fakeRecorder) RecordFeedback(_ context.Context, wordID int64, correct bool, _ time.Time) error {
	f.feedback = append(f.feedback, feedbackCall{wordID: wordID, correct: correct})
	return nil
}

func (f *fakeRecorder) ToggleReview(_ context.Context, wordID int64) (bool, error) {
	f.reviews[wordID] = !f.reviews[wordID]
	return f.reviews[wordID], nil
}

func (f *fakeRecorder) AppendPracticeRecord(_ context.Context, rec model.PracticeRecord) (int64, error) {
	f.records = append(f.records, rec)
	return int64(len(f.records)), nil
}

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return cat
}

func TestBuildValidation(t *testing.T) {
	cat := mustCatalog(t)
	rng := rand.New(rand.NewSource(1))
	if _, err := Build(cat, nil, nil, nil, model.OrderSequential, rng); err == nil {
		t.Fatalf("expected error for empty selection")
	}
	if _, err := Build(cat, nil, nil, []int{9}, model.OrderSequential, rng); err == nil {
		t.Fatalf("expected error for empty question list")
	}
	disabled := map[int64]bool{1: true, 2: true}
	if _, err := Build(cat, nil, disabled, []int{1}, model.OrderSequential, rng); err == nil {
		t.Fatalf("expected error when every word is disabled")
	}
}

func TestBuildSequential(t *testing.T) {
	cat := mustCatalog(t)
	questions, err := Build(cat, nil, map[int64]bool{3: true}, []int{1, 2}, model.OrderSequential, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []int64{1, 2, 4}
	if len(questions) != len(want) {
		t.Fatalf("unexpected questions: %+v", questions)
	}
	for i, id := range want {
		if questions[i].ID != id {
			t.Fatalf("catalog order not preserved: %+v", questions)
		}
	}
}

func TestBuildRandomIsPermutation(t *testing.T) {
	cat := mustCatalog(t)
	questions, err := Build(cat, nil, nil, []int{1, 2}, model.OrderRandom, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(questions))
	}
	seen := map[int64]bool{}
	for _, q := range questions {
		if seen[q.ID] {
			t.Fatalf("duplicate question %d", q.ID)
		}
		seen[q.ID] = true
	}
	for id := int64(1); id <= 4; id++ {
		if !seen[id] {
			t.Fatalf("missing question %d", id)
		}
	}
}

func TestBuildWeakOrdering(t *testing.T) {
	cat := mustCatalog(t)
	wordStats := map[int64]model.WordStat{
		1: {WordID: 1, Correct: 3, Incorrect: 0}, // 100
		2: {WordID: 2, Correct: 1, Incorrect: 1}, // 50
		3: {WordID: 3, Correct: 1, Incorrect: 3}, // 25
		// 4 unattempted: sentinel, sorts last
	}
	questions, err := Build(cat, wordStats, nil, []int{1, 2}, model.OrderWeak, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []int64{3, 2, 1, 4}
	for i, id := range want {
		if questions[i].ID != id {
			t.Fatalf("unexpected weak order: %+v", questions)
		}
	}

	again, err := Build(cat, wordStats, nil, []int{1, 2}, model.OrderWeak, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i := range questions {
		if questions[i].ID != again[i].ID {
			t.Fatalf("weak ordering not stable across runs")
		}
	}
}

func TestEngineFlow(t *testing.T) {
	cat := mustCatalog(t)
	rec := newFakeRecorder()
	finder := related.NewFinder(cat.Words())
	questions, err := Build(cat, nil, nil, []int{1}, model.OrderSequential, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	engine, err := New(questions, model.ModeJapaneseToChinese, rec, finder, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx := context.Background()

	if engine.Prompt() != "こんにちは" {
		t.Fatalf("unexpected prompt: %q", engine.Prompt())
	}
	if err := engine.Feedback(ctx, true); err == nil {
		t.Fatalf("feedback before reveal should fail")
	}

	rel := engine.Reveal()
	if len(rel) != 1 || rel[0].Simplified != "你们" {
		t.Fatalf("unexpected related words: %+v", rel)
	}
	if err := engine.Feedback(ctx, true); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if engine.Phase() != PhasePresenting || engine.Index() != 1 {
		t.Fatalf("unexpected state after first answer: phase=%v index=%d", engine.Phase(), engine.Index())
	}

	engine.Reveal()
	if err := engine.Feedback(ctx, false); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if engine.Phase() != PhaseCompleted {
		t.Fatalf("expected completed, got %v", engine.Phase())
	}

	summary := engine.Summary()
	if summary.Correct != 1 || summary.Total != 2 || summary.Accuracy != 50 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.AccuracyText() != "50% (1/2)" {
		t.Fatalf("unexpected accuracy text: %q", summary.AccuracyText())
	}
	if len(summary.Incorrect) != 1 || summary.Incorrect[0].Simplified != "你们" {
		t.Fatalf("unexpected incorrect list: %+v", summary.Incorrect)
	}

	// Eager commit: both answers hit the recorder as they happened.
	if len(rec.feedback) != 2 || !rec.feedback[0].correct || rec.feedback[1].correct {
		t.Fatalf("unexpected recorded feedback: %+v", rec.feedback)
	}
}

func TestEngineToggleReview(t *testing.T) {
	cat := mustCatalog(t)
	rec := newFakeRecorder()
	finder := related.NewFinder(cat.Words())
	questions, _ := Build(cat, nil, nil, []int{1}, model.OrderSequential, rand.New(rand.NewSource(1)))
	engine, err := New(questions, model.ModeChineseToJapanese, rec, finder, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx := context.Background()

	on, err := engine.ToggleReview(ctx)
	if err != nil || !on {
		t.Fatalf("toggle on: %v %v", on, err)
	}
	if !engine.Reviewed() {
		t.Fatalf("review indicator not set")
	}
	off, err := engine.ToggleReview(ctx)
	if err != nil || off {
		t.Fatalf("toggle off: %v %v", off, err)
	}
	if engine.Reviewed() {
		t.Fatalf("review indicator not cleared")
	}

	// Flag a word and answer through; the summary lists it.
	if _, err := engine.ToggleReview(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	engine.Reveal()
	if err := engine.Feedback(ctx, true); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	engine.Reveal()
	if err := engine.Feedback(ctx, true); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	summary := engine.Summary()
	if len(summary.Review) != 1 || summary.Review[0].ID != 1 {
		t.Fatalf("unexpected review list: %+v", summary.Review)
	}
}

func TestRetryIncorrectSubsequence(t *testing.T) {
	cat := mustCatalog(t)
	rec := newFakeRecorder()
	finder := related.NewFinder(cat.Words())
	questions, _ := Build(cat, nil, nil, []int{1, 2}, model.OrderSequential, rand.New(rand.NewSource(1)))
	engine, err := New(questions[:3], model.ModeChineseToJapanese, rec, finder, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx := context.Background()

	answers := []bool{true, false, false}
	for _, correct := range answers {
		engine.Reveal()
		if err := engine.Feedback(ctx, correct); err != nil {
			t.Fatalf("feedback: %v", err)
		}
	}

	retry, err := engine.Retry()
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retry.Len() != 2 {
		t.Fatalf("expected 2 retry questions, got %d", retry.Len())
	}
	first, _ := retry.Current()
	if first.ID != 2 {
		t.Fatalf("unexpected retry order: %+v", first)
	}
	retry.Reveal()
	if err := retry.Feedback(ctx, true); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	second, _ := retry.Current()
	if second.ID != 3 {
		t.Fatalf("unexpected retry order: %+v", second)
	}
}

func TestRetryWithoutIncorrect(t *testing.T) {
	results := []model.QuestionResult{
		{Word: model.Word{ID: 1}, Correct: true},
	}
	if _, err := BuildRetry(results); err == nil {
		t.Fatalf("expected error when nothing to retry")
	}
}

func TestFinishAppendsHistoryOnlyWhenSaving(t *testing.T) {
	cat := mustCatalog(t)
	rec := newFakeRecorder()
	finder := related.NewFinder(cat.Words())
	questions, _ := Build(cat, nil, nil, []int{1}, model.OrderSequential, rand.New(rand.NewSource(1)))
	engine, err := New(questions, model.ModeChineseToJapanese, rec, finder, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		engine.Reveal()
		if err := engine.Feedback(ctx, i == 0); err != nil {
			t.Fatalf("feedback: %v", err)
		}
	}

	if err := engine.Finish(ctx, false); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if len(rec.records) != 0 {
		t.Fatalf("no record expected without saving: %+v", rec.records)
	}
	if err := engine.Finish(ctx, true); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if len(rec.records) != 1 {
		t.Fatalf("expected 1 record, got %+v", rec.records)
	}
	saved := rec.records[0]
	if saved.Accuracy != 50 || len(saved.Lessons) != 1 || saved.Lessons[0] != 1 {
		t.Fatalf("unexpected record: %+v", saved)
	}
}

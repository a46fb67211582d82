// Package session builds question lists and drives one practice run.
package session

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/hmori/shengci/internal/catalog"
	"github.com/hmori/shengci/internal/model"
	"github.com/hmori/shengci/internal/related"
	"github.com/hmori/shengci/internal/stats"
)

// Recorder persists per-question progress. Satisfied by *store.Store.
type Recorder interface {
	RecordFeedback(ctx context.Context, wordID int64, correct bool, at time.Time) error
	ToggleReview(ctx context.Context, wordID int64) (bool, error)
	AppendPracticeRecord(ctx context.Context, rec model.PracticeRecord) (int64, error)
}

// Phase is the state of the per-question machine.
type Phase int

// Engine phases.
const (
	PhasePresenting Phase = iota
	PhaseRevealed
	PhaseCompleted
)

// Build filters the catalog to the selected lessons, drops disabled words, and
// orders the result. An empty selection or an empty filtered list is a
// validation error; no session state is created.
func Build(cat *catalog.Catalog, wordStats map[int64]model.WordStat, disabled map[int64]bool, lessons []int, order model.OrderMode, rng *rand.Rand) ([]model.Word, error) {
	if len(lessons) == 0 {
		return nil, fmt.Errorf("select at least one lesson")
	}
	questions := cat.Filter(lessons, disabled)
	if len(questions) == 0 {
		return nil, fmt.Errorf("the selected lessons contain no words to practice")
	}

	switch order {
	case model.OrderSequential, "":
		// Catalog order preserved.
	case model.OrderRandom:
		rng.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	case model.OrderWeak:
		// Ascending unrounded accuracy; ties keep catalog order. The sentinel
		// places unattempted words after fully known ones.
		acc := make([]float64, len(questions))
		for i, q := range questions {
			stat := wordStats[q.ID]
			acc[i], _ = stats.Accuracy(stat.Correct, stat.Incorrect)
		}
		idx := make([]int, len(questions))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(i, j int) bool {
			return acc[idx[i]] < acc[idx[j]]
		})
		ordered := make([]model.Word, len(questions))
		for i, j := range idx {
			ordered[i] = questions[j]
		}
		questions = ordered
	default:
		return nil, fmt.Errorf("unknown order mode %q", order)
	}
	return questions, nil
}

// BuildRetry returns the incorrect subsequence of a finished session's
// results, in order and unshuffled. No incorrect answers is a validation
// error.
func BuildRetry(results []model.QuestionResult) ([]model.Word, error) {
	var questions []model.Word
	for _, r := range results {
		if !r.Correct {
			questions = append(questions, r.Word)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("there are no incorrect answers to retry")
	}
	return questions, nil
}

// Engine drives the present/reveal/feedback state machine over a fixed
// question list. It is driven by discrete external events; one session is
// active at a time and every stat mutation is committed as it happens.
type Engine struct {
	questions []model.Word
	mode      model.QuestionMode
	recorder  Recorder
	finder    *related.Finder
	now       func() time.Time

	index   int
	phase   Phase
	results []model.QuestionResult
	related []model.Word
	reviews map[int64]bool
}

// New constructs an engine over a non-empty question list. The review
// snapshot seeds the per-word indicator and the summary's review list.
func New(questions []model.Word, mode model.QuestionMode, recorder Recorder, finder *related.Finder, wordStats map[int64]model.WordStat) (*Engine, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("question list is empty")
	}
	reviews := make(map[int64]bool, len(questions))
	for _, q := range questions {
		if stat, ok := wordStats[q.ID]; ok && stat.Review {
			reviews[q.ID] = true
		}
	}
	return &Engine{
		questions: questions,
		mode:      mode,
		recorder:  recorder,
		finder:    finder,
		now:       time.Now,
		reviews:   reviews,
	}, nil
}

// Phase returns the current machine state.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Index returns the zero-based position of the active question.
func (e *Engine) Index() int {
	return e.index
}

// Len returns the question count.
func (e *Engine) Len() int {
	return len(e.questions)
}

// Current returns the active question. ok is false once completed.
func (e *Engine) Current() (model.Word, bool) {
	if e.phase == PhaseCompleted {
		return model.Word{}, false
	}
	return e.questions[e.index], true
}

// Prompt returns the visible side of the active question for the session's
// question mode.
func (e *Engine) Prompt() string {
	word, ok := e.Current()
	if !ok {
		return ""
	}
	switch e.mode {
	case model.ModeJapaneseToChinese:
		return word.Japanese
	case model.ModePinyinToRest:
		return word.Pinyin
	default:
		return word.Simplified
	}
}

// Reveal moves the active question to the revealed state and returns its
// related-word set. Calling it again before feedback returns the same set.
func (e *Engine) Reveal() []model.Word {
	word, ok := e.Current()
	if !ok {
		return nil
	}
	if e.phase == PhaseRevealed {
		return e.related
	}
	e.related = e.finder.Find(word)
	e.phase = PhaseRevealed
	return e.related
}

// Feedback records the answer for the revealed question and advances. The
// stat commit happens immediately; an aborted session keeps it.
func (e *Engine) Feedback(ctx context.Context, correct bool) error {
	if e.phase != PhaseRevealed {
		return fmt.Errorf("no revealed question to answer")
	}
	word := e.questions[e.index]
	if err := e.recorder.RecordFeedback(ctx, word.ID, correct, e.now()); err != nil {
		return err
	}
	e.results = append(e.results, model.QuestionResult{Word: word, Correct: correct})
	e.related = nil
	e.index++
	if e.index >= len(e.questions) {
		e.phase = PhaseCompleted
		return nil
	}
	e.phase = PhasePresenting
	return nil
}

// ToggleReview flips the review flag of the active question and persists it
// immediately. Valid whenever a question is active.
func (e *Engine) ToggleReview(ctx context.Context) (bool, error) {
	word, ok := e.Current()
	if !ok {
		return false, fmt.Errorf("no active question")
	}
	review, err := e.recorder.ToggleReview(ctx, word.ID)
	if err != nil {
		return false, err
	}
	e.reviews[word.ID] = review
	return review, nil
}

// Reviewed reports the review flag of the active question.
func (e *Engine) Reviewed() bool {
	word, ok := e.Current()
	if !ok {
		return false
	}
	return e.reviews[word.ID]
}

// Results returns the answered questions so far, in order.
func (e *Engine) Results() []model.QuestionResult {
	return e.results
}

// Lessons returns the distinct lesson ids covered, ascending.
func (e *Engine) Lessons() []int {
	seen := map[int]struct{}{}
	var lessons []int
	for _, q := range e.questions {
		if _, ok := seen[q.Lesson]; ok {
			continue
		}
		seen[q.Lesson] = struct{}{}
		lessons = append(lessons, q.Lesson)
	}
	sort.Ints(lessons)
	return lessons
}

// POSResult aggregates session results for one part-of-speech tag.
type POSResult struct {
	POS     string
	Correct int
	Total   int
}

// Summary aggregates a completed session.
type Summary struct {
	Correct   int
	Total     int
	Accuracy  float64
	PerPOS    []POSResult
	Incorrect []model.Word
	Review    []model.Word
}

// AccuracyText renders the rounded session accuracy for display.
func (s Summary) AccuracyText() string {
	if s.Total == 0 {
		return stats.NoAttemptsText
	}
	return fmt.Sprintf("%d%% (%d/%d)", int(math.Round(s.Accuracy)), s.Correct, s.Total)
}

// Summary aggregates the results recorded so far: totals, per-POS breakdown
// (sorted by tag), the incorrect list, and the review-flagged questions.
func (e *Engine) Summary() Summary {
	summary := Summary{Total: len(e.results)}
	perPOS := map[string]*POSResult{}
	for _, r := range e.results {
		if r.Correct {
			summary.Correct++
		} else {
			summary.Incorrect = append(summary.Incorrect, r.Word)
		}
		agg, ok := perPOS[r.Word.POS]
		if !ok {
			agg = &POSResult{POS: r.Word.POS}
			perPOS[r.Word.POS] = agg
		}
		agg.Total++
		if r.Correct {
			agg.Correct++
		}
	}
	for _, agg := range perPOS {
		summary.PerPOS = append(summary.PerPOS, *agg)
	}
	sort.Slice(summary.PerPOS, func(i, j int) bool {
		return summary.PerPOS[i].POS < summary.PerPOS[j].POS
	})
	if summary.Total > 0 {
		summary.Accuracy = 100 * float64(summary.Correct) / float64(summary.Total)
	}
	for _, q := range e.questions {
		if e.reviews[q.ID] {
			summary.Review = append(summary.Review, q)
		}
	}
	return summary
}

// Finish appends the session to the practice-history log when saving is
// enabled. Per-question stats are already committed either way.
func (e *Engine) Finish(ctx context.Context, save bool) error {
	if !save {
		return nil
	}
	summary := e.Summary()
	_, err := e.recorder.AppendPracticeRecord(ctx, model.PracticeRecord{
		Date:     e.now(),
		Lessons:  e.Lessons(),
		Accuracy: summary.Accuracy,
	})
	return err
}

// Retry starts a fresh run over this session's incorrect subsequence, in
// order, skipping the ordering rules. The review snapshot carries over.
func (e *Engine) Retry() (*Engine, error) {
	questions, err := BuildRetry(e.results)
	if err != nil {
		return nil, err
	}
	return &Engine{
		questions: questions,
		mode:      e.mode,
		recorder:  e.recorder,
		finder:    e.finder,
		now:       e.now,
		reviews:   e.reviews,
	}, nil
}

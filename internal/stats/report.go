package stats

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/hmori/shengci/internal/catalog"
	"github.com/hmori/shengci/internal/model"
	"github.com/hmori/shengci/internal/store"
)

// POSAccuracy aggregates counters for one part-of-speech tag.
type POSAccuracy struct {
	POS       string
	Correct   int
	Incorrect int
}

// WeakWord is a word below full accuracy, a candidate for extra review.
type WeakWord struct {
	Word     model.Word
	Accuracy float64
	Text     string
}

// Report is a read-side projection over the stats store for a lesson subset.
type Report struct {
	Correct   int
	Incorrect int
	PerPOS    []POSAccuracy
	WeakWords []WeakWord
}

// BuildReport aggregates totals, per-POS counters, and the weak-word
// shortlist for the selected lessons. It performs no writes.
func BuildReport(ctx context.Context, st *store.Store, cat *catalog.Catalog, lessons []int, weakCount int) (Report, error) {
	stats, err := st.AllStats(ctx)
	if err != nil {
		return Report{}, err
	}
	words := cat.Filter(lessons, nil)

	var report Report
	perPOS := map[string]*POSAccuracy{}
	for _, word := range words {
		stat, ok := stats[word.ID]
		if !ok {
			continue
		}
		report.Correct += stat.Correct
		report.Incorrect += stat.Incorrect
		agg, ok := perPOS[word.POS]
		if !ok {
			agg = &POSAccuracy{POS: word.POS}
			perPOS[word.POS] = agg
		}
		agg.Correct += stat.Correct
		agg.Incorrect += stat.Incorrect
	}
	for _, agg := range perPOS {
		report.PerPOS = append(report.PerPOS, *agg)
	}
	sort.Slice(report.PerPOS, func(i, j int) bool {
		return report.PerPOS[i].POS < report.PerPOS[j].POS
	})

	report.WeakWords = WeakWords(words, stats, weakCount)
	return report, nil
}

// WeakWords selects words with accuracy in [0, 100), ascending, stable over
// the catalog order, truncated to count. Unattempted words carry the sentinel
// accuracy and are excluded by the filter. Count <= 0 keeps the whole list.
func WeakWords(words []model.Word, stats map[int64]model.WordStat, count int) []WeakWord {
	var weak []WeakWord
	for _, word := range words {
		stat := stats[word.ID]
		acc, text := Accuracy(stat.Correct, stat.Incorrect)
		if acc >= 100 {
			continue
		}
		weak = append(weak, WeakWord{Word: word, Accuracy: acc, Text: text})
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].Accuracy < weak[j].Accuracy
	})
	if count > 0 && len(weak) > count {
		weak = weak[:count]
	}
	return weak
}

// RenderReport prints the aggregate totals, per-POS table, and weak words.
func RenderReport(w io.Writer, report Report) error {
	total := report.Correct + report.Incorrect
	overall := NoAttemptsText
	if total > 0 {
		overall = fmt.Sprintf("%d%% (%d/%d)", int(math.Round(100*float64(report.Correct)/float64(total))), report.Correct, total)
	}
	if _, err := fmt.Fprintf(w, "Overall accuracy: %s\n\n", overall); err != nil {
		return err
	}

	if len(report.PerPOS) > 0 {
		rows := make([][]string, 0, len(report.PerPOS))
		for _, agg := range report.PerPOS {
			_, text := Accuracy(agg.Correct, agg.Incorrect)
			rows = append(rows, []string{agg.POS, text})
		}
		if err := writeLines(w, formatTable([]string{"POS", "Accuracy"}, rows, map[int]bool{1: true})); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}

	if len(report.WeakWords) == 0 {
		_, err := fmt.Fprintln(w, "No weak words.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Weak words"); err != nil {
		return err
	}
	return writeLines(w, formatTable(
		[]string{"Word", "Pinyin", "Japanese", "Accuracy"},
		weakWordRows(report.WeakWords),
		map[int]bool{3: true},
	))
}

func weakWordRows(weak []WeakWord) [][]string {
	rows := make([][]string, 0, len(weak))
	for _, item := range weak {
		rows = append(rows, []string{
			item.Word.Simplified,
			item.Word.Pinyin,
			item.Word.Japanese,
			item.Text,
		})
	}
	return rows
}

// RenderWordList prints a lesson's words with accuracy and flags, one row per
// word in catalog order.
func RenderWordList(w io.Writer, words []model.Word, stats map[int64]model.WordStat) error {
	rows := make([][]string, 0, len(words))
	for _, word := range words {
		stat := stats[word.ID]
		_, text := Accuracy(stat.Correct, stat.Incorrect)
		enabled := "yes"
		if stat.Disabled {
			enabled = "no"
		}
		review := ""
		if stat.Review {
			review = "*"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", word.ID),
			word.Simplified,
			word.Pinyin,
			word.Japanese,
			word.POS,
			text,
			enabled,
			review,
		})
	}
	return writeLines(w, formatTable(
		[]string{"ID", "Word", "Pinyin", "Japanese", "POS", "Accuracy", "Enabled", "Review"},
		rows,
		map[int]bool{0: true, 5: true},
	))
}

// RenderHistory prints the practice-history log, newest first.
func RenderHistory(w io.Writer, records []model.PracticeRecord, titles func([]int) string) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No practice history.")
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", rec.ID),
			rec.Date.Local().Format("2006-01-02 15:04"),
			titles(rec.Lessons),
			fmt.Sprintf("%d%%", int(math.Round(rec.Accuracy))),
		})
	}
	return writeLines(w, formatTable(
		[]string{"ID", "Date", "Lessons", "Accuracy"},
		rows,
		map[int]bool{0: true, 3: true},
	))
}

// HistoryAccuracySeries extracts session accuracies oldest first.
func HistoryAccuracySeries(records []model.PracticeRecord) []float64 {
	values := make([]float64, len(records))
	for i, rec := range records {
		values[len(records)-1-i] = rec.Accuracy
	}
	return values
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

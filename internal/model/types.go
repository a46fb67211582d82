// Package model defines shared data structures.
package model

import "time"

// OrderMode selects how a session's question list is ordered.
type OrderMode string

// Question orderings.
const (
	OrderSequential OrderMode = "sequential"
	OrderRandom     OrderMode = "random"
	OrderWeak       OrderMode = "weak"
)

// QuestionMode selects which side of a word is shown as the prompt.
type QuestionMode string

// Question modes.
const (
	ModeJapaneseToChinese QuestionMode = "jp-cn"
	ModeChineseToJapanese QuestionMode = "cn-jp"
	ModePinyinToRest      QuestionMode = "pinyin"
)

// Word is a single catalog entry. Identity is ID, unique across the catalog.
type Word struct {
	ID         int64  `json:"id"`
	Lesson     int    `json:"-"`
	Simplified string `json:"simplified"`
	Pinyin     string `json:"pinyin"`
	Japanese   string `json:"japanese"`
	POS        string `json:"pos"`
}

// Lesson groups words; the unit of selection for a session.
type Lesson struct {
	ID    int    `json:"lesson"`
	Title string `json:"title"`
	Words []Word `json:"words"`
}

// WordStat holds per-word counters and flags. The zero value is the state of
// a word that has never been attempted or toggled.
type WordStat struct {
	WordID    int64
	Correct   int
	Incorrect int
	Review    bool
	Disabled  bool
}

// Attempt is one recorded feedback event for a word.
type Attempt struct {
	WordID  int64
	At      time.Time
	Correct bool
}

// QuestionResult is one answered question within a session.
type QuestionResult struct {
	Word    Word
	Correct bool
}

// PracticeRecord is one finished, saved session in the history log.
type PracticeRecord struct {
	ID       int64
	Date     time.Time
	Lessons  []int
	Accuracy float64
}

// Config defines practice settings.
type Config struct {
	Lessons   []int
	Order     OrderMode
	Mode      QuestionMode
	Speak     bool
	Save      bool
	WeakCount int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lessons   []int
	WeakCount int
}

// SpeechConfig defines the external pronunciation command.
type SpeechConfig struct {
	Command string
	Args    []string
}

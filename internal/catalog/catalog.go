// Package catalog loads the lesson catalog from a JSON document.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hmori/shengci/internal/model"
)

// Catalog is the immutable in-memory view of lessons and words.
type Catalog struct {
	lessons []model.Lesson
	words   []model.Word
	byID    map[int64]model.Word
}

type document struct {
	Lessons []model.Lesson `json:"lessons"`
}

// Load reads and validates a lessons JSON document.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a catalog from raw JSON.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.Lessons) == 0 {
		return nil, fmt.Errorf("catalog contains no lessons")
	}

	c := &Catalog{
		lessons: doc.Lessons,
		byID:    map[int64]model.Word{},
	}
	for li := range c.lessons {
		lesson := &c.lessons[li]
		for wi := range lesson.Words {
			word := &lesson.Words[wi]
			word.Lesson = lesson.ID
			if _, ok := c.byID[word.ID]; ok {
				return nil, fmt.Errorf("duplicate word id %d in catalog", word.ID)
			}
			c.byID[word.ID] = *word
			c.words = append(c.words, *word)
		}
	}
	return c, nil
}

// Lessons returns all lessons in catalog order.
func (c *Catalog) Lessons() []model.Lesson {
	return c.lessons
}

// Words returns all words flattened in catalog order.
func (c *Catalog) Words() []model.Word {
	return c.words
}

// WordByID looks up a word by its id.
func (c *Catalog) WordByID(id int64) (model.Word, bool) {
	w, ok := c.byID[id]
	return w, ok
}

// LessonByID looks up a lesson by its id.
func (c *Catalog) LessonByID(id int) (model.Lesson, bool) {
	for _, lesson := range c.lessons {
		if lesson.ID == id {
			return lesson, true
		}
	}
	return model.Lesson{}, false
}

// HasLesson reports whether a lesson id exists.
func (c *Catalog) HasLesson(id int) bool {
	_, ok := c.LessonByID(id)
	return ok
}

// Filter returns words belonging to the selected lessons, catalog order
// preserved, excluding explicitly disabled word ids.
func (c *Catalog) Filter(lessons []int, disabled map[int64]bool) []model.Word {
	selected := make(map[int]struct{}, len(lessons))
	for _, id := range lessons {
		selected[id] = struct{}{}
	}
	var out []model.Word
	for _, word := range c.words {
		if _, ok := selected[word.Lesson]; !ok {
			continue
		}
		if disabled[word.ID] {
			continue
		}
		out = append(out, word)
	}
	return out
}

// Titles returns the titles of the given lesson ids, deduplicated, sorted by
// lesson id, joined with ", ". Unknown ids render as "Lesson N".
func (c *Catalog) Titles(ids []int) string {
	uniq := make(map[int]struct{}, len(ids))
	ordered := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := uniq[id]; ok {
			continue
		}
		uniq[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Ints(ordered)
	titles := make([]string, 0, len(ordered))
	for _, id := range ordered {
		if lesson, ok := c.LessonByID(id); ok {
			titles = append(titles, lesson.Title)
			continue
		}
		titles = append(titles, fmt.Sprintf("Lesson %d", id))
	}
	return strings.Join(titles, ", ")
}

// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hmori/shengci/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for word statistics and practice history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS word_stats (
			word_id INTEGER PRIMARY KEY,
			correct INTEGER NOT NULL DEFAULT 0,
			incorrect INTEGER NOT NULL DEFAULT 0,
			review INTEGER NOT NULL DEFAULT 0,
			disabled INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			word_id INTEGER NOT NULL,
			at TEXT NOT NULL,
			correct INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS practice_history (
			id INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			lessons TEXT NOT NULL,
			accuracy REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_word_id ON attempts(word_id);`,
		`CREATE INDEX IF NOT EXISTS idx_practice_history_date ON practice_history(date);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetStat returns the stat row for a word. A word without a row yields the
// zero-value stat, never an error.
func (s *Store) GetStat(ctx context.Context, wordID int64) (model.WordStat, error) {
	stat := model.WordStat{WordID: wordID}
	row := s.db.QueryRowContext(ctx,
		`SELECT correct, incorrect, review, disabled FROM word_stats WHERE word_id = ?`, wordID)
	err := row.Scan(&stat.Correct, &stat.Incorrect, &stat.Review, &stat.Disabled)
	if err == sql.ErrNoRows {
		return stat, nil
	}
	if err != nil {
		return model.WordStat{}, err
	}
	return stat, nil
}

// AllStats returns every stored stat row keyed by word id.
func (s *Store) AllStats(ctx context.Context) (map[int64]model.WordStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word_id, correct, incorrect, review, disabled FROM word_stats`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	stats := map[int64]model.WordStat{}
	for rows.Next() {
		var stat model.WordStat
		if err := rows.Scan(&stat.WordID, &stat.Correct, &stat.Incorrect, &stat.Review, &stat.Disabled); err != nil {
			return nil, err
		}
		stats[stat.WordID] = stat
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecordFeedback increments the word's counter and appends an attempt in one
// transaction. The stat row is created on first feedback.
func (s *Store) RecordFeedback(ctx context.Context, wordID int64, correct bool, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	correctInc, incorrectInc := 0, 1
	if correct {
		correctInc, incorrectInc = 1, 0
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO word_stats (word_id, correct, incorrect) VALUES (?, ?, ?)
		 ON CONFLICT(word_id) DO UPDATE SET correct = correct + ?, incorrect = incorrect + ?`,
		wordID, correctInc, incorrectInc, correctInc, incorrectInc); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (word_id, at, correct) VALUES (?, ?, ?)`,
		wordID, at.Format(time.RFC3339Nano), correct); err != nil {
		return err
	}
	return tx.Commit()
}

// ToggleReview flips the review flag and returns the new value. The stat row
// is created on first toggle.
func (s *Store) ToggleReview(ctx context.Context, wordID int64) (bool, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO word_stats (word_id, review) VALUES (?, 1)
		 ON CONFLICT(word_id) DO UPDATE SET review = 1 - review`, wordID); err != nil {
		return false, err
	}
	var review bool
	row := s.db.QueryRowContext(ctx, `SELECT review FROM word_stats WHERE word_id = ?`, wordID)
	if err := row.Scan(&review); err != nil {
		return false, err
	}
	return review, nil
}

// SetEnabled marks a word as included in or excluded from future sessions.
func (s *Store) SetEnabled(ctx context.Context, wordID int64, enabled bool) error {
	disabled := 0
	if !enabled {
		disabled = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO word_stats (word_id, disabled) VALUES (?, ?)
		 ON CONFLICT(word_id) DO UPDATE SET disabled = ?`,
		wordID, disabled, disabled)
	return err
}

// DisabledWords returns the set of word ids excluded from sessions.
func (s *Store) DisabledWords(ctx context.Context) (map[int64]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word_id FROM word_stats WHERE disabled = 1`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	disabled := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		disabled[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return disabled, nil
}

// ListAttempts returns the attempt history for a word, oldest first.
func (s *Store) ListAttempts(ctx context.Context, wordID int64) ([]model.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word_id, at, correct FROM attempts WHERE word_id = ? ORDER BY id ASC`, wordID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.Attempt
	for rows.Next() {
		var attempt model.Attempt
		var at string
		if err := rows.Scan(&attempt.WordID, &at, &attempt.Correct); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, err
		}
		attempt.At = parsed
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// AppendPracticeRecord stores a finished session in the history log.
func (s *Store) AppendPracticeRecord(ctx context.Context, rec model.PracticeRecord) (int64, error) {
	lessons, err := json.Marshal(rec.Lessons)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO practice_history (date, lessons, accuracy) VALUES (?, ?, ?)`,
		rec.Date.Format(time.RFC3339Nano), string(lessons), rec.Accuracy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListPracticeRecords returns the history log, newest first.
func (s *Store) ListPracticeRecords(ctx context.Context) ([]model.PracticeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, lessons, accuracy FROM practice_history ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.PracticeRecord
	for rows.Next() {
		var rec model.PracticeRecord
		var date, lessons string
		if err := rows.Scan(&rec.ID, &date, &lessons, &rec.Accuracy); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, err
		}
		rec.Date = parsed
		if err := json.Unmarshal([]byte(lessons), &rec.Lessons); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// DeletePracticeRecord removes one history record by id.
func (s *Store) DeletePracticeRecord(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM practice_history WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no practice record with id %d", id)
	}
	return nil
}

// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/vocaquiz/vocaquiz/internal/model"
	"github.com/vocaquiz/vocaquiz/internal/session"

	_ "modernc.org/sqlite" // SQLite driver.
)

// masteredStreak is the number of consecutive correct answers after
// which a word counts as mastered in the stats view.
const masteredStreak = 3

// Store wraps SQLite access for session results and word statistics.
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
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			total_questions INTEGER NOT NULL,
			correct_count INTEGER NOT NULL,
			score_percentage INTEGER NOT NULL,
			elapsed_seconds REAL NOT NULL,
			choice_count INTEGER NOT NULL,
			fillin_count INTEGER NOT NULL,
			range_start INTEGER NOT NULL,
			range_end INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_mistakes (
			session_id INTEGER NOT NULL,
			word_id INTEGER NOT NULL,
			headword TEXT NOT NULL,
			part_of_speech TEXT NOT NULL,
			translation TEXT NOT NULL,
			user_response TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS word_stats (
			word_id INTEGER PRIMARY KEY,
			mistake_count INTEGER NOT NULL DEFAULT 0,
			consecutive_correct INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_completed_at ON sessions(completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_mistakes_session ON session_mistakes(session_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult stores a completed session and folds its outcomes into
// the per-word statistics: a missed word gains a mistake and loses its
// streak, a correct word extends its streak. Stats change only here,
// between sessions, never while a quiz is running.
func (s *Store) SaveResult(ctx context.Context, res session.Result) error {
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

	summary := res.Summary
	result, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, completed_at, total_questions, correct_count, score_percentage, elapsed_seconds, choice_count, fillin_count, range_start, range_end)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.StartedAt.Format(time.RFC3339Nano),
		summary.CompletedAt.Format(time.RFC3339Nano),
		summary.TotalQuestions,
		summary.CorrectCount,
		summary.ScorePercentage,
		summary.ElapsedSeconds,
		summary.TypeBreakdown.MultipleChoice,
		summary.TypeBreakdown.FillIn,
		summary.RangeStart,
		summary.RangeEnd,
	)
	if err != nil {
		return err
	}
	sessionID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	if len(res.Mistakes) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO session_mistakes (session_id, word_id, headword, part_of_speech, translation, user_response)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, m := range res.Mistakes {
			if _, err = stmt.ExecContext(ctx, sessionID, m.WordID, m.Headword, m.PartOfSpeech, m.Translation, m.UserResponse); err != nil {
				return err
			}
		}
	}

	now := time.Now().Format(time.RFC3339Nano)
	for _, m := range res.Mistakes {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO word_stats (word_id, mistake_count, consecutive_correct, updated_at)
			 VALUES (?, 1, 0, ?)
			 ON CONFLICT(word_id) DO UPDATE SET
				mistake_count = mistake_count + 1,
				consecutive_correct = 0,
				updated_at = excluded.updated_at`,
			m.WordID, now); err != nil {
			return err
		}
	}
	for _, id := range res.CorrectIDs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO word_stats (word_id, mistake_count, consecutive_correct, updated_at)
			 VALUES (?, 0, 1, ?)
			 ON CONFLICT(word_id) DO UPDATE SET
				consecutive_correct = consecutive_correct + 1,
				updated_at = excluded.updated_at`,
			id, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// MistakeStats returns per-word statistics for pool enrichment.
func (s *Store) MistakeStats(ctx context.Context) ([]model.MistakeStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word_id, mistake_count, consecutive_correct FROM word_stats`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var stats []model.MistakeStat
	for rows.Next() {
		var stat model.MistakeStat
		if err := rows.Scan(&stat.WordID, &stat.MistakeCount, &stat.ConsecutiveCorrect); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// MasteredCount returns how many words have reached the mastery streak.
func (s *Store) MasteredCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM word_stats WHERE consecutive_correct >= ?`, masteredStreak).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecentSessions returns the newest sessions first, bounded by limit.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.completed_at, s.total_questions, s.correct_count, s.score_percentage, s.elapsed_seconds,
			(SELECT COUNT(*) FROM session_mistakes m WHERE m.session_id = s.id),
			s.range_start, s.range_end
		 FROM sessions s
		 ORDER BY s.completed_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var completedAt string
		if err := rows.Scan(&rec.ID, &completedAt, &rec.TotalQuestions, &rec.CorrectCount, &rec.ScorePercentage, &rec.ElapsedSeconds, &rec.MistakeCount, &rec.RangeStart, &rec.RangeEnd); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			return nil, err
		}
		rec.CompletedAt = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

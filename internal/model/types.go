// Package model defines shared data structures.
package model

import "time"

// WordEntry is a single vocabulary item. Entries are immutable once a
// pool is built; mistake statistics change only between sessions.
type WordEntry struct {
	ID                 int
	Headword           string
	Translation        string
	PartOfSpeech       string
	MistakeCount       int
	ConsecutiveCorrect int
}

// MistakeStat carries prior per-word statistics from the store or the
// remote record service.
type MistakeStat struct {
	WordID             int
	MistakeCount       int
	ConsecutiveCorrect int
}

// QuestionType distinguishes multiple-choice from fill-in questions.
type QuestionType int

const (
	MultipleChoice QuestionType = iota
	FillIn
)

// String returns the stable name used in persistence and display.
func (t QuestionType) String() string {
	if t == FillIn {
		return "fillin"
	}
	return "choice"
}

// Direction controls which field is shown and which is expected.
type Direction int

const (
	// SourceToTarget shows the headword and expects the translation.
	SourceToTarget Direction = iota
	// TargetToSource shows the translation and expects the headword.
	TargetToSource
)

// SessionConfig holds user-supplied parameters for one quiz run.
type SessionConfig struct {
	RangeStart      int
	RangeEnd        int
	RequestedCount  int
	ChoiceRatio     float64
	InterleaveRatio float64

	// PinDirection fixes the direction for the whole session instead
	// of drawing it per item.
	PinDirection   bool
	FixedDirection Direction
	RevealDelayMs  int
}

// QuizItem is one question derived from a WordEntry for a session.
type QuizItem struct {
	Word         *WordEntry
	QuestionType QuestionType
	Direction    Direction

	Answered          bool
	AnsweredCorrectly bool
	UserResponse      string
}

// Prompt returns the field shown to the user for this item.
func (q QuizItem) Prompt() string {
	if q.Direction == TargetToSource {
		return q.Word.Translation
	}
	return q.Word.Headword
}

// Answer returns the canonical expected value for this item.
func (q QuizItem) Answer() string {
	if q.Direction == TargetToSource {
		return q.Word.Headword
	}
	return q.Word.Translation
}

// MistakeRecord captures one incorrectly answered item.
type MistakeRecord struct {
	WordID       int
	Headword     string
	PartOfSpeech string
	Translation  string
	UserResponse string
}

// TypeBreakdown counts questions per type in a session.
type TypeBreakdown struct {
	MultipleChoice int
	FillIn         int
}

// SessionSummary is produced exactly once, at session completion.
type SessionSummary struct {
	StartedAt       time.Time
	CompletedAt     time.Time
	TotalQuestions  int
	CorrectCount    int
	ScorePercentage int
	ElapsedSeconds  float64
	TypeBreakdown   TypeBreakdown
	RangeStart      int
	RangeEnd        int
}

// SessionRecord is a stored summary as read back from history.
type SessionRecord struct {
	ID              int64
	CompletedAt     time.Time
	TotalQuestions  int
	CorrectCount    int
	ScorePercentage int
	ElapsedSeconds  float64
	MistakeCount    int
	RangeStart      int
	RangeEnd        int
}

// Package session orchestrates the quiz lifecycle and scoring.
package session

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/vocaquiz/vocaquiz/internal/distractor"
	"github.com/vocaquiz/vocaquiz/internal/evaluate"
	"github.com/vocaquiz/vocaquiz/internal/model"
	"github.com/vocaquiz/vocaquiz/internal/sampler"
	"github.com/vocaquiz/vocaquiz/internal/wordpool"
)

// State is the engine lifecycle state.
type State int

const (
	Idle State = iota
	AwaitingAnswer
	Completed
)

var (
	// ErrNotAwaitingAnswer is returned when Submit is called outside
	// the AwaitingAnswer state, including re-submission on a scored
	// item.
	ErrNotAwaitingAnswer = errors.New("no question is awaiting an answer")
	// ErrNotCompleted is returned when the summary is requested before
	// the session finished.
	ErrNotCompleted = errors.New("session is not completed")
	// ErrAlreadyStarted is returned when Start is called on a running
	// engine.
	ErrAlreadyStarted = errors.New("session already started")
)

// Result bundles everything handed to a result sink.
type Result struct {
	Summary    model.SessionSummary
	Mistakes   []model.MistakeRecord
	CorrectIDs []int
}

// Sink accepts a completed session for persistence. Sink failures
// never invalidate the computed summary.
type Sink interface {
	SaveResult(ctx context.Context, res Result) error
}

// Outcome reports the scoring of one submitted answer.
type Outcome struct {
	Correct   bool
	Canonical string
	Done      bool
}

// Engine holds all state for one quiz session. Instances are
// independent, so concurrent sessions (for example in tests) never
// share mutable state.
type Engine struct {
	smp *sampler.Sampler
	gen *distractor.Generator
	now func() time.Time

	state    State
	cfg      model.SessionConfig
	eligible []*model.WordEntry
	items    []model.QuizItem
	options  [][]distractor.Option
	index    int

	correctCount int
	mistakes     []model.MistakeRecord

	startedAt   time.Time
	completedAt time.Time
	paused      bool
	pausedAt    time.Time
	pausedFor   time.Duration
}

// New constructs an idle engine.
func New(smp *sampler.Sampler, gen *distractor.Generator) *Engine {
	return &Engine{smp: smp, gen: gen, now: time.Now}
}

// Start builds the question queue and begins the session. On sampling
// failure the error is returned unchanged and the engine stays Idle.
func (e *Engine) Start(pool *wordpool.Pool, cfg model.SessionConfig) error {
	if e.state != Idle {
		return ErrAlreadyStarted
	}
	eligible, err := pool.Range(cfg.RangeStart, cfg.RangeEnd)
	if err != nil {
		return err
	}
	items, err := e.smp.Build(pool, cfg)
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.eligible = eligible
	e.items = items
	e.options = make([][]distractor.Option, len(items))
	e.index = 0
	e.correctCount = 0
	e.mistakes = nil
	e.startedAt = e.now()
	e.pausedFor = 0
	e.paused = false
	e.state = AwaitingAnswer
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Progress returns the 1-based current question number and the total.
func (e *Engine) Progress() (current, total int) {
	if e.state == Idle {
		return 0, 0
	}
	n := e.index + 1
	if n > len(e.items) {
		n = len(e.items)
	}
	return n, len(e.items)
}

// Current exposes the question awaiting an answer and, for multiple
// choice, its option set. Options are generated once per item so
// repeated calls see the same order.
func (e *Engine) Current() (*model.QuizItem, []distractor.Option, error) {
	if e.state != AwaitingAnswer {
		return nil, nil, ErrNotAwaitingAnswer
	}
	item := &e.items[e.index]
	if item.QuestionType != model.MultipleChoice {
		return item, nil, nil
	}
	if e.options[e.index] == nil {
		e.options[e.index] = e.gen.Options(item.Word, e.eligible, item.Direction)
	}
	return item, e.options[e.index], nil
}

// Submit scores the current question exactly once and advances the
// session. Empty input is an ordinary wrong answer. Submitting while
// paused, completed, or on an already-scored item is rejected.
func (e *Engine) Submit(input string) (Outcome, error) {
	if e.state != AwaitingAnswer || e.paused {
		return Outcome{}, ErrNotAwaitingAnswer
	}
	item := &e.items[e.index]
	if item.Answered {
		return Outcome{}, ErrNotAwaitingAnswer
	}

	canonical := item.Answer()
	correct := evaluate.Answer(item.QuestionType, canonical, input)
	item.Answered = true
	item.AnsweredCorrectly = correct
	item.UserResponse = input

	if correct {
		e.correctCount++
	} else {
		e.mistakes = append(e.mistakes, model.MistakeRecord{
			WordID:       item.Word.ID,
			Headword:     item.Word.Headword,
			PartOfSpeech: item.Word.PartOfSpeech,
			Translation:  item.Word.Translation,
			UserResponse: input,
		})
	}

	done := e.index == len(e.items)-1
	if done {
		e.completedAt = e.now()
		e.state = Completed
	} else {
		e.index++
	}
	return Outcome{Correct: correct, Canonical: canonical, Done: done}, nil
}

// Pause stops the elapsed-time clock. Question order and scoring are
// unaffected.
func (e *Engine) Pause() {
	if e.state != AwaitingAnswer || e.paused {
		return
	}
	e.paused = true
	e.pausedAt = e.now()
}

// Resume restarts the clock after Pause.
func (e *Engine) Resume() {
	if !e.paused {
		return
	}
	e.pausedFor += e.now().Sub(e.pausedAt)
	e.paused = false
}

// Paused reports whether the session clock is stopped.
func (e *Engine) Paused() bool {
	return e.paused
}

// Elapsed returns the running time excluding pauses.
func (e *Engine) Elapsed() time.Duration {
	switch e.state {
	case Idle:
		return 0
	case Completed:
		return e.completedAt.Sub(e.startedAt) - e.pausedFor
	}
	elapsed := e.now().Sub(e.startedAt) - e.pausedFor
	if e.paused {
		elapsed -= e.now().Sub(e.pausedAt)
	}
	return elapsed
}

// Summary aggregates the completed session into a result for display
// and for the sink. Only valid in the Completed state.
func (e *Engine) Summary() (Result, error) {
	if e.state != Completed {
		return Result{}, ErrNotCompleted
	}
	total := len(e.items)
	breakdown := model.TypeBreakdown{}
	var correctIDs []int
	for _, item := range e.items {
		if item.QuestionType == model.MultipleChoice {
			breakdown.MultipleChoice++
		} else {
			breakdown.FillIn++
		}
		if item.AnsweredCorrectly {
			correctIDs = append(correctIDs, item.Word.ID)
		}
	}

	elapsed := e.Elapsed().Seconds()
	summary := model.SessionSummary{
		StartedAt:       e.startedAt,
		CompletedAt:     e.completedAt,
		TotalQuestions:  total,
		CorrectCount:    e.correctCount,
		ScorePercentage: int(math.Round(100 * float64(e.correctCount) / float64(total))),
		ElapsedSeconds:  math.Round(elapsed*10) / 10,
		TypeBreakdown:   breakdown,
		RangeStart:      e.cfg.RangeStart,
		RangeEnd:        e.cfg.RangeEnd,
	}
	return Result{
		Summary:    summary,
		Mistakes:   append([]model.MistakeRecord(nil), e.mistakes...),
		CorrectIDs: correctIDs,
	}, nil
}

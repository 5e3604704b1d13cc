package session

import (
	"testing"
	"time"

	"github.com/vocaquiz/vocaquiz/internal/distractor"
	"github.com/vocaquiz/vocaquiz/internal/model"
	"github.com/vocaquiz/vocaquiz/internal/sampler"
	"github.com/vocaquiz/vocaquiz/internal/wordpool"
)

// fakeClock drives the engine's time source so pause accounting is
// deterministic.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T, poolSize, count int, choiceRatio float64) (*Engine, *fakeClock) {
	t.Helper()
	pool := testPool(t, poolSize)
	engine := New(sampler.NewSeeded(42), distractor.NewSeeded(42))
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	engine.now = func() time.Time { return clock.now }

	err := engine.Start(pool, model.SessionConfig{
		RangeStart:     1,
		RangeEnd:       poolSize,
		RequestedCount: count,
		ChoiceRatio:    choiceRatio,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return engine, clock
}

func TestStartTwice(t *testing.T) {
	engine, _ := newTestEngine(t, 10, 5, 0)
	pool := testPool(t, 10)
	err := engine.Start(pool, model.SessionConfig{RangeStart: 1, RangeEnd: 10, RequestedCount: 5})
	if err != ErrAlreadyStarted {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestStartStaysIdleOnEmptyRange(t *testing.T) {
	pool := testPool(t, 5)
	engine := New(sampler.NewSeeded(1), distractor.NewSeeded(1))
	err := engine.Start(pool, model.SessionConfig{RangeStart: 50, RangeEnd: 60, RequestedCount: 5})
	if err != wordpool.ErrEmptyRange {
		t.Fatalf("expected ErrEmptyRange, got %v", err)
	}
	if engine.State() != Idle {
		t.Fatalf("engine must stay idle after failed start")
	}
}

func TestFullSessionScoring(t *testing.T) {
	engine, clock := newTestEngine(t, 10, 4, 0)

	answers := []bool{true, false, true, true}
	for i, correct := range answers {
		item, _, err := engine.Current()
		if err != nil {
			t.Fatalf("current at %d: %v", i, err)
		}
		input := item.Answer()
		if !correct {
			input = "definitely wrong"
		}
		clock.advance(5 * time.Second)
		outcome, err := engine.Submit(input)
		if err != nil {
			t.Fatalf("submit at %d: %v", i, err)
		}
		if outcome.Correct != correct {
			t.Fatalf("outcome at %d: got %v, want %v", i, outcome.Correct, correct)
		}
		if outcome.Canonical != item.Answer() {
			t.Fatalf("canonical mismatch at %d", i)
		}
		wantDone := i == len(answers)-1
		if outcome.Done != wantDone {
			t.Fatalf("done at %d: got %v, want %v", i, outcome.Done, wantDone)
		}
	}

	if engine.State() != Completed {
		t.Fatalf("expected Completed state")
	}
	result, err := engine.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if result.Summary.TotalQuestions != 4 || result.Summary.CorrectCount != 3 {
		t.Fatalf("unexpected tally: %+v", result.Summary)
	}
	if result.Summary.ScorePercentage != 75 {
		t.Fatalf("expected score 75, got %d", result.Summary.ScorePercentage)
	}
	if result.Summary.ElapsedSeconds != 20 {
		t.Fatalf("expected 20 elapsed seconds, got %v", result.Summary.ElapsedSeconds)
	}
	if len(result.Mistakes) != 1 {
		t.Fatalf("expected 1 mistake, got %d", len(result.Mistakes))
	}
	if result.Mistakes[0].UserResponse != "definitely wrong" {
		t.Fatalf("mistake must capture the user response verbatim")
	}
	if len(result.CorrectIDs) != 3 {
		t.Fatalf("expected 3 correct ids, got %d", len(result.CorrectIDs))
	}
	if got := result.Summary.TypeBreakdown.FillIn; got != 4 {
		t.Fatalf("expected 4 fill-in questions, got %d", got)
	}
}

func TestScoreRounding(t *testing.T) {
	engine, _ := newTestEngine(t, 10, 3, 0)

	for i := 0; i < 3; i++ {
		item, _, err := engine.Current()
		if err != nil {
			t.Fatalf("current: %v", err)
		}
		input := item.Answer()
		if i == 2 {
			input = "wrong"
		}
		if _, err := engine.Submit(input); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	result, err := engine.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// 2/3 rounds to 67, not truncates to 66.
	if result.Summary.ScorePercentage != 67 {
		t.Fatalf("expected score 67, got %d", result.Summary.ScorePercentage)
	}
}

func TestSubmitAfterCompletion(t *testing.T) {
	engine, _ := newTestEngine(t, 5, 1, 0)
	if _, err := engine.Submit("whatever"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := engine.Submit("again"); err != ErrNotAwaitingAnswer {
		t.Fatalf("expected ErrNotAwaitingAnswer, got %v", err)
	}
}

func TestSubmitWhilePaused(t *testing.T) {
	engine, _ := newTestEngine(t, 5, 3, 0)
	engine.Pause()
	if _, err := engine.Submit("whatever"); err != ErrNotAwaitingAnswer {
		t.Fatalf("expected ErrNotAwaitingAnswer while paused, got %v", err)
	}
	engine.Resume()
	if _, err := engine.Submit("whatever"); err != nil {
		t.Fatalf("submit after resume: %v", err)
	}
}

func TestEmptyInputIsWrongAnswer(t *testing.T) {
	engine, _ := newTestEngine(t, 5, 2, 0)
	outcome, err := engine.Submit("")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Correct {
		t.Fatalf("empty input must score as incorrect")
	}
	if current, _ := engine.Progress(); current != 2 {
		t.Fatalf("session must advance past a blank answer, at question %d", current)
	}
}

func TestPauseExcludedFromElapsed(t *testing.T) {
	engine, clock := newTestEngine(t, 5, 2, 0)

	clock.advance(10 * time.Second)
	engine.Pause()
	clock.advance(30 * time.Second)
	if got := engine.Elapsed(); got != 10*time.Second {
		t.Fatalf("elapsed while paused: got %v, want 10s", got)
	}
	engine.Resume()
	clock.advance(5 * time.Second)
	if got := engine.Elapsed(); got != 15*time.Second {
		t.Fatalf("elapsed after resume: got %v, want 15s", got)
	}

	for i := 0; i < 2; i++ {
		item, _, err := engine.Current()
		if err != nil {
			t.Fatalf("current: %v", err)
		}
		if _, err := engine.Submit(item.Answer()); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	result, err := engine.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if result.Summary.ElapsedSeconds != 15 {
		t.Fatalf("expected 15 elapsed seconds, got %v", result.Summary.ElapsedSeconds)
	}
}

func TestPauseIsIdempotent(t *testing.T) {
	engine, clock := newTestEngine(t, 5, 2, 0)
	engine.Pause()
	engine.Pause()
	clock.advance(time.Minute)
	engine.Resume()
	engine.Resume()
	if got := engine.Elapsed(); got != 0 {
		t.Fatalf("expected zero elapsed, got %v", got)
	}
}

func TestSummaryBeforeCompletion(t *testing.T) {
	engine, _ := newTestEngine(t, 5, 3, 0)
	if _, err := engine.Summary(); err != ErrNotCompleted {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
}

func TestCurrentOptionsAreStable(t *testing.T) {
	engine, _ := newTestEngine(t, 10, 5, 1)

	_, first, err := engine.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(first) == 0 {
		t.Fatalf("expected options for multiple choice")
	}
	_, second, err := engine.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("option count changed between calls")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("option order changed between calls")
		}
	}
}

func TestProgress(t *testing.T) {
	engine, _ := newTestEngine(t, 10, 3, 0)
	current, total := engine.Progress()
	if current != 1 || total != 3 {
		t.Fatalf("expected 1/3, got %d/%d", current, total)
	}
	if _, err := engine.Submit(""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	current, total = engine.Progress()
	if current != 2 || total != 3 {
		t.Fatalf("expected 2/3, got %d/%d", current, total)
	}
}

func testPool(t *testing.T, n int) *wordpool.Pool {
	t.Helper()
	entries := make([]model.WordEntry, 0, n)
	for i := 1; i <= n; i++ {
		entries = append(entries, model.WordEntry{
			ID:           i,
			Headword:     "head" + string(rune('a'+(i-1)%26)),
			PartOfSpeech: "n.",
			Translation:  "trans" + string(rune('a'+(i-1)%26)),
		})
	}
	pool, err := wordpool.New(entries)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return pool
}

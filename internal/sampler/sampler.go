// Package sampler assembles quiz question queues from a word pool.
package sampler

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/vocaquiz/vocaquiz/internal/model"
	"github.com/vocaquiz/vocaquiz/internal/wordpool"
)

// ErrNoQuestions indicates that the config yields zero selectable items.
var ErrNoQuestions = errors.New("no questions can be selected")

// Sampler draws session word sets without replacement.
type Sampler struct {
	rnd *rand.Rand
}

// New returns a Sampler seeded with the current time.
func New() *Sampler {
	return &Sampler{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a Sampler with a fixed seed for deterministic runs.
func NewSeeded(seed int64) *Sampler {
	return &Sampler{rnd: rand.New(rand.NewSource(seed))}
}

// Build produces the ordered question queue for one session. The
// queue length is min(RequestedCount, eligible set size), all word ids
// are distinct, and the final order is an independent shuffle of the
// selection.
//
// Two selection strategies are implemented. With InterleaveRatio > 0
// the eligible set is partitioned into previously-missed and fresh
// words and the missed partition fills floor(count*ratio) slots.
// Otherwise every word gets the integer weight
// 1 + (mistakeCount - minMistakeCount) and is drawn by roulette
// selection without replacement.
func (s *Sampler) Build(pool *wordpool.Pool, cfg model.SessionConfig) ([]model.QuizItem, error) {
	eligible, err := pool.Range(cfg.RangeStart, cfg.RangeEnd)
	if err != nil {
		return nil, err
	}
	count := cfg.RequestedCount
	if count > len(eligible) {
		count = len(eligible)
	}
	if count <= 0 {
		return nil, ErrNoQuestions
	}

	var selected []*model.WordEntry
	if cfg.InterleaveRatio > 0 {
		selected = s.selectInterleaved(eligible, count, cfg.InterleaveRatio)
	} else {
		selected = s.selectWeighted(eligible, count)
	}

	items := make([]model.QuizItem, len(selected))
	for i, word := range selected {
		items[i] = model.QuizItem{
			Word:         word,
			QuestionType: s.drawType(cfg.ChoiceRatio),
			Direction:    s.drawDirection(cfg),
		}
	}

	// Selection order must not leak into question order.
	s.rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return items, nil
}

// selectWeighted draws count words by roulette selection. Weights are
// integers of at least 1, so words without history remain selectable
// while frequently missed words are proportionally more likely.
func (s *Sampler) selectWeighted(eligible []*model.WordEntry, count int) []*model.WordEntry {
	minMistakes := eligible[0].MistakeCount
	for _, word := range eligible[1:] {
		if word.MistakeCount < minMistakes {
			minMistakes = word.MistakeCount
		}
	}

	type candidate struct {
		word   *model.WordEntry
		weight int
	}
	remaining := make([]candidate, len(eligible))
	total := 0
	for i, word := range eligible {
		w := 1 + word.MistakeCount - minMistakes
		remaining[i] = candidate{word: word, weight: w}
		total += w
	}

	selected := make([]*model.WordEntry, 0, count)
	for len(selected) < count && len(remaining) > 0 {
		r := s.rnd.Intn(total)
		acc := 0
		idx := 0
		for i, c := range remaining {
			acc += c.weight
			if r < acc {
				idx = i
				break
			}
		}
		selected = append(selected, remaining[idx].word)
		total -= remaining[idx].weight
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return selected
}

// selectInterleaved fills floor(count*ratio) slots from previously
// missed words (capped at the partition size) and the remainder from
// the rest of the eligible set.
func (s *Sampler) selectInterleaved(eligible []*model.WordEntry, count int, ratio float64) []*model.WordEntry {
	var missed, fresh []*model.WordEntry
	for _, word := range eligible {
		if word.MistakeCount > 0 {
			missed = append(missed, word)
		} else {
			fresh = append(fresh, word)
		}
	}

	missedCount := int(math.Floor(float64(count) * ratio))
	if missedCount > len(missed) {
		missedCount = len(missed)
	}

	s.shuffleWords(missed)
	selected := append([]*model.WordEntry(nil), missed[:missedCount]...)

	// The remainder is drawn from everything not yet used, so leftover
	// missed words can still fill the queue when fresh words run out.
	rest := append(append([]*model.WordEntry(nil), fresh...), missed[missedCount:]...)
	s.shuffleWords(rest)
	need := count - missedCount
	if need > len(rest) {
		need = len(rest)
	}
	return append(selected, rest[:need]...)
}

func (s *Sampler) shuffleWords(words []*model.WordEntry) {
	s.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
}

// drawType is a per-item Bernoulli trial against the choice ratio, so
// small sessions may deviate from the nominal split.
func (s *Sampler) drawType(choiceRatio float64) model.QuestionType {
	if s.rnd.Float64() < choiceRatio {
		return model.MultipleChoice
	}
	return model.FillIn
}

func (s *Sampler) drawDirection(cfg model.SessionConfig) model.Direction {
	if cfg.PinDirection {
		return cfg.FixedDirection
	}
	if s.rnd.Float64() < 0.5 {
		return model.TargetToSource
	}
	return model.SourceToTarget
}

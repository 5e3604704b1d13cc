// Package distractor generates wrong options for multiple choice.
package distractor

import (
	"math/rand"
	"strings"
	"time"

	"github.com/vocaquiz/vocaquiz/internal/model"
)

// optionsTotal is the target option count: one correct plus three
// distractors.
const (
	optionsTotal = 4
	needed       = optionsTotal - 1
)

// Option is a single rendered choice.
type Option struct {
	Value   string
	Correct bool
}

// Generator draws distractors from the pool available to the session.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a Generator with a fixed seed for deterministic runs.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Options builds the shuffled option set for a multiple-choice item.
// Same-POS entries are preferred as distractors; when fewer than three
// exist the rest of the pool fills in. Values are unique under trimmed
// case-folded comparison. A pool too small for three distractors
// yields fewer than four options, which is a valid degraded result.
func (g *Generator) Options(correct *model.WordEntry, pool []*model.WordEntry, dir model.Direction) []Option {
	correctValue := answerField(correct, dir)
	seen := map[string]struct{}{normalize(correctValue): {}}

	var preferred, fallback []*model.WordEntry
	for _, word := range pool {
		if word.ID == correct.ID {
			continue
		}
		if word.PartOfSpeech == correct.PartOfSpeech {
			preferred = append(preferred, word)
		} else {
			fallback = append(fallback, word)
		}
	}

	distractors := g.draw(preferred, dir, seen, needed)
	if len(distractors) < needed {
		distractors = append(distractors, g.draw(fallback, dir, seen, needed-len(distractors))...)
	}

	options := make([]Option, 0, len(distractors)+1)
	options = append(options, Option{Value: correctValue, Correct: true})
	for _, value := range distractors {
		options = append(options, Option{Value: value})
	}
	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// draw picks up to limit unique option values from candidates, in
// random order without replacement.
func (g *Generator) draw(candidates []*model.WordEntry, dir model.Direction, seen map[string]struct{}, limit int) []string {
	remaining := append([]*model.WordEntry(nil), candidates...)
	var out []string
	for len(out) < limit && len(remaining) > 0 {
		idx := g.rnd.Intn(len(remaining))
		word := remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)

		value := answerField(word, dir)
		key := normalize(value)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

func answerField(word *model.WordEntry, dir model.Direction) string {
	if dir == model.TargetToSource {
		return word.Headword
	}
	return word.Translation
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

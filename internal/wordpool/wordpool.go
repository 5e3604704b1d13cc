// Package wordpool builds and filters the per-session word catalog.
package wordpool

import (
	"errors"
	"fmt"

	"github.com/vocaquiz/vocaquiz/internal/model"
)

// ErrEmptyPool indicates that loading produced no usable entries.
var ErrEmptyPool = errors.New("word pool is empty")

// ErrEmptyRange indicates that no entry falls inside the id range.
var ErrEmptyRange = errors.New("no words in the selected id range")

// Pool is the immutable-per-session catalog of vocabulary entries.
type Pool struct {
	entries []model.WordEntry
	byID    map[int]int
}

// New builds a pool from entries. Duplicate ids are rejected so that
// id-based distractor exclusion and mistake correlation stay sound.
func New(entries []model.WordEntry) (*Pool, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyPool
	}
	byID := make(map[int]int, len(entries))
	for i, entry := range entries {
		if _, ok := byID[entry.ID]; ok {
			return nil, fmt.Errorf("duplicate word id %d", entry.ID)
		}
		byID[entry.ID] = i
	}
	pool := &Pool{
		entries: append([]model.WordEntry(nil), entries...),
		byID:    byID,
	}
	return pool, nil
}

// Len returns the number of entries in the pool.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Entries returns pointers to all entries in load order.
func (p *Pool) Entries() []*model.WordEntry {
	out := make([]*model.WordEntry, len(p.entries))
	for i := range p.entries {
		out[i] = &p.entries[i]
	}
	return out
}

// ByID returns the entry with the given id, or nil.
func (p *Pool) ByID(id int) *model.WordEntry {
	idx, ok := p.byID[id]
	if !ok {
		return nil
	}
	return &p.entries[idx]
}

// MaxID returns the largest id in the pool.
func (p *Pool) MaxID() int {
	maxID := 0
	for _, entry := range p.entries {
		if entry.ID > maxID {
			maxID = entry.ID
		}
	}
	return maxID
}

// Range returns the eligible set for the inclusive id bounds.
func (p *Pool) Range(start, end int) ([]*model.WordEntry, error) {
	if start > end {
		return nil, fmt.Errorf("invalid range %d-%d", start, end)
	}
	var out []*model.WordEntry
	for i := range p.entries {
		if p.entries[i].ID >= start && p.entries[i].ID <= end {
			out = append(out, &p.entries[i])
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyRange
	}
	return out, nil
}

// ApplyStats returns a new pool with prior mistake statistics merged
// into the entries. Unknown word ids are ignored; the receiver is not
// modified, keeping loaded pools immutable.
func (p *Pool) ApplyStats(stats []model.MistakeStat) *Pool {
	entries := append([]model.WordEntry(nil), p.entries...)
	for _, stat := range stats {
		idx, ok := p.byID[stat.WordID]
		if !ok {
			continue
		}
		entries[idx].MistakeCount = stat.MistakeCount
		entries[idx].ConsecutiveCorrect = stat.ConsecutiveCorrect
	}
	byID := make(map[int]int, len(entries))
	for i, entry := range entries {
		byID[entry.ID] = i
	}
	return &Pool{entries: entries, byID: byID}
}

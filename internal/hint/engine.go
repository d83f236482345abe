// Package hint owns per-question, per-level hint reveal state and the score
// penalties it accumulates.
package hint

import (
	"sync"
	"time"

	"practice-service/internal/models"
)

// levelPenalties maps a 1-based hint level to its score penalty. The table
// carries four levels even though the session surface currently exposes
// three; an unknown level costs nothing.
var levelPenalties = map[int]int{
	1: 5,
	2: 10,
	3: 15,
	4: 20,
}

// Engine tracks revealed hints for one session.
type Engine struct {
	mu           sync.Mutex
	usage        map[string]*models.HintUsage
	totalPenalty int
}

func NewEngine() *Engine {
	return &Engine{usage: make(map[string]*models.HintUsage)}
}

// Reveal records that the hint at hintIndex (zero-based) was shown for the
// given question and returns the penalty charged. Revealing the same level
// twice is a no-op and charges nothing, so the per-question penalty only ever
// increases, and at most once per level.
func (e *Engine) Reveal(questionID string, hintIndex int) int {
	level := hintIndex + 1

	e.mu.Lock()
	defer e.mu.Unlock()

	u, ok := e.usage[questionID]
	if !ok {
		u = &models.HintUsage{QuestionID: questionID}
		e.usage[questionID] = u
	}

	for _, revealed := range u.Levels {
		if revealed == level {
			return 0
		}
	}

	u.Levels = append(u.Levels, level)
	u.RevealedAt = append(u.RevealedAt, time.Now())

	penalty := levelPenalties[level]
	u.Penalty += penalty
	e.totalPenalty += penalty
	return penalty
}

// Usage returns a copy of the reveal record for one question.
func (e *Engine) Usage(questionID string) models.HintUsage {
	e.mu.Lock()
	defer e.mu.Unlock()

	u, ok := e.usage[questionID]
	if !ok {
		return models.HintUsage{QuestionID: questionID, Levels: []int{}}
	}
	return cloneUsage(u)
}

// QuestionPenalty returns the cumulative penalty for one question.
func (e *Engine) QuestionPenalty(questionID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if u, ok := e.usage[questionID]; ok {
		return u.Penalty
	}
	return 0
}

// TotalPenalty returns the session-wide cumulative penalty.
func (e *Engine) TotalPenalty() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalPenalty
}

// Snapshot copies all usage records, keyed by question id.
func (e *Engine) Snapshot() map[string]models.HintUsage {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]models.HintUsage, len(e.usage))
	for id, u := range e.usage {
		out[id] = cloneUsage(u)
	}
	return out
}

// Restore replaces the engine state with a previously captured snapshot.
func (e *Engine) Restore(snapshot map[string]models.HintUsage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.usage = make(map[string]*models.HintUsage, len(snapshot))
	e.totalPenalty = 0
	for id, u := range snapshot {
		copied := cloneUsage(&u)
		e.usage[id] = &copied
		e.totalPenalty += u.Penalty
	}
}

// Reset clears all reveal state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.usage = make(map[string]*models.HintUsage)
	e.totalPenalty = 0
}

func cloneUsage(u *models.HintUsage) models.HintUsage {
	out := models.HintUsage{
		QuestionID: u.QuestionID,
		Levels:     make([]int, len(u.Levels)),
		RevealedAt: make([]time.Time, len(u.RevealedAt)),
		Penalty:    u.Penalty,
	}
	copy(out.Levels, u.Levels)
	copy(out.RevealedAt, u.RevealedAt)
	return out
}

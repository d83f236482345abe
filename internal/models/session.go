package models

import "time"

// Session lifecycle states.
const (
	SessionIdle      = "idle"
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// SessionSettings controls per-session behaviour supplied at start time.
type SessionSettings struct {
	TimeLimitSeconds  int    `bson:"time_limit_seconds" json:"timeLimitSeconds"`
	DefaultType       string `bson:"default_type" json:"defaultType"`
	DefaultDifficulty int    `bson:"default_difficulty" json:"defaultDifficulty"`
}

// Metrics is a derived snapshot, recomputed from session, answer and hint
// state on demand. It is a cache, never a source of truth.
type Metrics struct {
	QuestionsCompleted int     `bson:"questions_completed" json:"questionsCompleted"`
	Accuracy           float64 `bson:"accuracy" json:"accuracy"`
	TotalTimeSpent     int     `bson:"total_time_spent" json:"totalTimeSpent"`
}

// Progress reports position within the question list. Current is 1-based for
// display.
type Progress struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// PracticeSession is the persisted snapshot of a session engine. The question
// list is immutable once the session starts.
type PracticeSession struct {
	ID               string               `bson:"_id,omitempty" json:"id"`
	UserID           string               `bson:"user_id" json:"userId"`
	Questions        []Question           `bson:"questions" json:"questions"`
	CurrentIndex     int                  `bson:"current_index" json:"currentIndex"`
	State            string               `bson:"state" json:"state"`
	StartTime        time.Time            `bson:"start_time" json:"startTime"`
	RemainingSeconds int                  `bson:"remaining_seconds" json:"remainingSeconds"`
	Settings         SessionSettings      `bson:"settings" json:"settings"`
	Answers          []Answer             `bson:"answers" json:"answers"`
	Drafts           map[string]Draft     `bson:"drafts" json:"drafts"`
	Hints            map[string]HintUsage `bson:"hints" json:"hints"`
	Metrics          Metrics              `bson:"metrics" json:"metrics"`
}

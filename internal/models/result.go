package models

import "time"

// PracticeResult packages the frozen outcome of a completed session.
type PracticeResult struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	SessionID      string    `bson:"session_id" json:"sessionId"`
	UserID         string    `bson:"user_id" json:"userId"`
	Metrics        Metrics   `bson:"metrics" json:"metrics"`
	HintPenalty    int       `bson:"hint_penalty" json:"hintPenalty"`
	QuestionCount  int       `bson:"question_count" json:"questionCount"`
	CompletionType string    `bson:"completion_type" json:"completionType"`
	CompletedAt    time.Time `bson:"completed_at" json:"completedAt"`
}

// Completion types recorded on results.
const (
	CompletionManual  = "manual"
	CompletionTimeout = "timeout"
)

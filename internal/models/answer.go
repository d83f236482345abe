package models

import "time"

// Feedback is the evaluation attached to a submitted answer. Score is on a
// 0-100 scale.
type Feedback struct {
	Score    float64 `bson:"score" json:"score"`
	Comments string  `bson:"comments" json:"comments"`
}

// Answer is a submitted response to a question. SubmittedAt is nil while the
// entry only mirrors draft work that was never explicitly submitted.
type Answer struct {
	QuestionID       string     `bson:"question_id" json:"questionId"`
	Text             string     `bson:"text" json:"text"`
	SubmittedAt      *time.Time `bson:"submitted_at,omitempty" json:"submittedAt,omitempty"`
	TimeSpentSeconds int        `bson:"time_spent_seconds" json:"timeSpentSeconds"`
	Feedback         *Feedback  `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// Draft is unsubmitted, auto-persisted work for a question. It is promoted to
// an Answer only on explicit submit.
type Draft struct {
	QuestionID string    `bson:"question_id" json:"questionId"`
	Draft      string    `bson:"draft" json:"draft"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
	AutoSaved  bool      `bson:"auto_saved" json:"autoSaved"`
}

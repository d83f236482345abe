package models

import "time"

// HintUsage tracks which hint levels were revealed for one question and the
// score penalty accumulated by doing so. Levels is ordered by reveal time and
// holds no duplicates; RevealedAt has the same cardinality as Levels.
type HintUsage struct {
	QuestionID string      `bson:"question_id" json:"questionId"`
	Levels     []int       `bson:"levels" json:"levels"`
	RevealedAt []time.Time `bson:"revealed_at" json:"revealedAt"`
	Penalty    int         `bson:"penalty" json:"penalty"`
}

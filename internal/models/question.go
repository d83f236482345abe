package models

import "time"

// Question type enum. Anything outside this set is coerced to TypeCoding
// during validation.
const (
	TypeCoding       = "coding"
	TypeSystemDesign = "system-design"
	TypeBehavioral   = "behavioral"
	TypeConceptual   = "conceptual"
)

var ValidQuestionTypes = map[string]bool{
	TypeCoding:       true,
	TypeSystemDesign: true,
	TypeBehavioral:   true,
	TypeConceptual:   true,
}

const (
	DefaultDifficulty   = 5
	DefaultTimeEstimate = 15 // minutes
)

type Question struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Title        string    `bson:"title" json:"title"`
	Content      string    `bson:"content" json:"content"`
	Type         string    `bson:"type" json:"type"`
	Difficulty   int       `bson:"difficulty" json:"difficulty"`
	Category     string    `bson:"category" json:"category"`
	Subcategory  string    `bson:"subcategory" json:"subcategory"`
	Hints        []string  `bson:"hints" json:"hints"`
	Solution     string    `bson:"solution" json:"solution"`
	TimeEstimate int       `bson:"time_estimate" json:"timeEstimate"`
	Tags         []string  `bson:"tags" json:"tags"`
	Sections     []string  `bson:"sections" json:"sections"`
	Examples     []string  `bson:"examples" json:"examples,omitempty"`
	Constraints  []string  `bson:"constraints" json:"constraints,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

package models

import "time"

// Topic represents a curriculum unit questions are generated against.
// Topics are owned by curriculum content management and read-only here.
type Topic struct {
	ID         string
	TopicCode  string
	TopicTitle string
	Strand     string
	SubStrand  string
	GradeLevel int
	IsActive   bool
	CreatedAt  time.Time
}

package models

import "time"

// Learner represents a child profile whose practice activity is tracked
type Learner struct {
	ID           string
	ParentUserID string
	FirstName    string
	LastName     *string
	GradeLevel   int
	CreatedAt    time.Time
}

// FullName returns the learner's display name
func (l Learner) FullName() string {
	if l.LastName != nil && *l.LastName != "" {
		return l.FirstName + " " + *l.LastName
	}
	return l.FirstName
}

package models

import "time"

// QuestionAttempt represents a single submitted answer.
// Created exactly once per submission and never mutated.
type QuestionAttempt struct {
	ID                  string
	QuestionID          string
	LearnerID           string
	SubmittedAnswer     string
	IsCorrect           bool
	HintsUsed           int
	ResponseTimeSeconds *int
	FeedbackText        string
	CreatedAt           time.Time
}

package models

import "time"

// SessionMode identifies why a learning session was started
type SessionMode string

const (
	ModePractice  SessionMode = "practice"
	ModeChallenge SessionMode = "challenge"
	ModeRevision  SessionMode = "revision"
)

// ValidSessionMode reports whether s is a known session mode
func ValidSessionMode(s string) bool {
	switch SessionMode(s) {
	case ModePractice, ModeChallenge, ModeRevision:
		return true
	}
	return false
}

// LearningSession represents one sitting of question practice.
// EndedAt is nil while the session is open; once set the session is
// closed and no further questions may be generated or attempted.
type LearningSession struct {
	ID              string
	LearnerID       string
	FocusTopicID    *string
	Mode            SessionMode
	StartedAt       time.Time
	EndedAt         *time.Time
	TotalQuestions  int
	CorrectAnswers  int
	AvgHintsUsed    float64
	EngagementScore *float64
}

// IsClosed reports whether the session has been completed
func (s LearningSession) IsClosed() bool {
	return s.EndedAt != nil
}

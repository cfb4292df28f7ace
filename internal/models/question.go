package models

import "time"

// Difficulty is the requested difficulty of a generated question
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyAdaptive Difficulty = "adaptive"
)

// ValidDifficulty reports whether s is a known difficulty level
func ValidDifficulty(s string) bool {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyAdaptive:
		return true
	}
	return false
}

// AnswerFormat describes how the learner answers a question
type AnswerFormat string

const (
	FormatMultipleChoice AnswerFormat = "multiple_choice"
	FormatNumeric        AnswerFormat = "numeric"
)

// GeneratedQuestion is a question produced by the generation orchestrator.
// It is immutable after creation; per-learner hint progress lives in
// HintProgress, not here.
type GeneratedQuestion struct {
	ID            string
	SessionID     string
	LearnerID     string
	TopicID       string
	Difficulty    Difficulty
	QuestionText  string
	AnswerFormat  AnswerFormat
	Options       []string // nil unless AnswerFormat is multiple_choice
	CorrectAnswer string
	HintLadder    []string
	Explanation   string
	Provider      string // provider name, or "deterministic"
	Model         string
	GenAttempts   int
	Seed          int
	CreatedAt     time.Time
}

// HintProgress records the highest hint level released to one learner
// for one question. Levels only ever increase.
type HintProgress struct {
	QuestionID    string
	LearnerID     string
	ReleasedLevel int
	UpdatedAt     time.Time
}

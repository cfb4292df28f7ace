package service

import "strings"

// Feedback strings returned to the learner with every attempt.
const (
	feedbackCorrect   = "Great job. That answer is correct."
	feedbackIncorrect = "Good try. Review the explanation and try again."
)

// NormalizeAnswer canonicalizes an answer value for comparison. Matching
// is case-insensitive and ignores surrounding whitespace; "7" and " 7 "
// are the same answer.
func NormalizeAnswer(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// EvaluateAnswer compares a submitted answer against the stored correct
// answer and returns the verdict with its feedback text
func EvaluateAnswer(submitted, correct string) (bool, string) {
	if NormalizeAnswer(submitted) == NormalizeAnswer(correct) {
		return true, feedbackCorrect
	}
	return false, feedbackIncorrect
}

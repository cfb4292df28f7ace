package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"brightpath/internal/models"
)

// DraftError reports a structurally invalid draft.
type DraftError struct {
	Reason string
}

func (e *DraftError) Error() string {
	return "invalid question draft: " + e.Reason
}

// ParseDraft parses raw model output into a Draft and rejects drafts
// that violate the generation contract. It never coerces an invalid
// draft into a valid one.
func ParseDraft(raw json.RawMessage, req Request) (Draft, error) {
	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return Draft{}, &DraftError{Reason: "model returned invalid JSON"}
	}

	draft.QuestionText = strings.TrimSpace(draft.QuestionText)
	draft.CorrectAnswer.Value = strings.TrimSpace(draft.CorrectAnswer.Value)
	draft.Explanation = strings.TrimSpace(draft.Explanation)
	if draft.AnswerFormat != string(models.FormatNumeric) {
		draft.AnswerFormat = string(models.FormatMultipleChoice)
	}

	if err := ValidateDraft(draft, req); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// ValidateDraft checks a draft against the generation request.
func ValidateDraft(draft Draft, req Request) error {
	if !strings.Contains(draft.QuestionText, "["+req.TopicCode+"]") {
		return &DraftError{Reason: "question text missing topic tag"}
	}

	if len(draft.HintLadder) != req.MaxHints {
		return &DraftError{Reason: fmt.Sprintf("hint count %d does not match requested %d", len(draft.HintLadder), req.MaxHints)}
	}

	if draft.AnswerFormat == string(models.FormatMultipleChoice) && distinctCount(draft.Options) < 3 {
		return &DraftError{Reason: "multiple choice question needs at least 3 distinct options"}
	}

	if draft.CorrectAnswer.Value == "" {
		return &DraftError{Reason: "correct answer is empty"}
	}

	return nil
}

func distinctCount(options []string) int {
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		seen[o] = struct{}{}
	}
	return len(seen)
}

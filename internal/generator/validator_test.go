package generator

import (
	"encoding/json"
	"strings"
	"testing"
)

func validDraftJSON() string {
	return `{
		"questionText": "[G4-MATH-ADD-001] What is 12 + 9?",
		"answerFormat": "multiple_choice",
		"options": ["21", "20", "23"],
		"correctAnswer": {"value": "21"},
		"hintLadder": ["Add the ones.", "Carry the ten.", "Check with 20 + 1."],
		"explanation": "12 + 9 = 21."
	}`
}

func TestParseDraft(t *testing.T) {
	req := Request{TopicCode: "G4-MATH-ADD-001", MaxHints: 3}

	tests := []struct {
		name       string
		raw        string
		wantErr    string
		wantFormat string
	}{
		{
			name:       "valid multiple choice draft",
			raw:        validDraftJSON(),
			wantFormat: "multiple_choice",
		},
		{
			name: "numeric format preserved",
			raw: `{
				"questionText": "[G4-MATH-ADD-001] What is 12 + 9?",
				"answerFormat": "numeric",
				"options": null,
				"correctAnswer": {"value": "21"},
				"hintLadder": ["a", "b", "c"],
				"explanation": "12 + 9 = 21."
			}`,
			wantFormat: "numeric",
		},
		{
			name:       "unknown format coerced to multiple choice",
			raw:        strings.Replace(validDraftJSON(), "multiple_choice", "open_ended", 1),
			wantFormat: "multiple_choice",
		},
		{
			name:    "invalid JSON",
			raw:     "not json at all",
			wantErr: "invalid JSON",
		},
		{
			name:    "missing topic tag",
			raw:     strings.Replace(validDraftJSON(), "[G4-MATH-ADD-001] ", "", 1),
			wantErr: "topic tag",
		},
		{
			name: "hint count mismatch",
			raw: strings.Replace(validDraftJSON(),
				`["Add the ones.", "Carry the ten.", "Check with 20 + 1."]`,
				`["Add the ones.", "Carry the ten."]`, 1),
			wantErr: "hint count",
		},
		{
			name:    "too few distinct options",
			raw:     strings.Replace(validDraftJSON(), `["21", "20", "23"]`, `["21", "21", "21"]`, 1),
			wantErr: "distinct options",
		},
		{
			name:    "empty correct answer",
			raw:     strings.Replace(validDraftJSON(), `{"value": "21"}`, `{"value": "  "}`, 1),
			wantErr: "correct answer is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := ParseDraft(json.RawMessage(tt.raw), req)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if draft.AnswerFormat != tt.wantFormat {
				t.Errorf("answer format = %q, want %q", draft.AnswerFormat, tt.wantFormat)
			}
		})
	}
}

func TestParseDraftTrimsFields(t *testing.T) {
	req := Request{TopicCode: "T1", MaxHints: 1}
	raw := `{
		"questionText": "  [T1] What is 1 + 1?  ",
		"answerFormat": "multiple_choice",
		"options": ["2", "3", "4"],
		"correctAnswer": {"value": " 2 "},
		"hintLadder": ["count up"],
		"explanation": " 1 + 1 = 2. "
	}`

	draft, err := ParseDraft(json.RawMessage(raw), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if draft.QuestionText != "[T1] What is 1 + 1?" {
		t.Errorf("question text not trimmed: %q", draft.QuestionText)
	}
	if draft.CorrectAnswer.Value != "2" {
		t.Errorf("correct answer not trimmed: %q", draft.CorrectAnswer.Value)
	}
	if draft.Explanation != "1 + 1 = 2." {
		t.Errorf("explanation not trimmed: %q", draft.Explanation)
	}
}

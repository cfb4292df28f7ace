package generator

import (
	"reflect"
	"testing"

	"brightpath/internal/models"
)

func TestDeterministic(t *testing.T) {
	tests := []struct {
		name         string
		seed         int
		maxHints     int
		questionText string
		options      []string
		answer       string
		hintCount    int
		explanation  string
	}{
		{
			name:         "seed 1",
			seed:         1,
			maxHints:     3,
			questionText: "[G4-MATH-ADD-001] What is 7 + 4?",
			options:      []string{"11", "10", "13"},
			answer:       "11",
			hintCount:    3,
			explanation:  "7 + 4 = 11.",
		},
		{
			name:         "seed 5 wraps both operands",
			seed:         5,
			maxHints:     3,
			questionText: "[G4-MATH-ADD-001] What is 6 + 4?",
			options:      []string{"10", "9", "12"},
			answer:       "10",
			hintCount:    3,
			explanation:  "6 + 4 = 10.",
		},
		{
			name:         "hints truncated to requested count",
			seed:         2,
			maxHints:     1,
			questionText: "[G4-MATH-ADD-001] What is 8 + 5?",
			options:      []string{"13", "12", "15"},
			answer:       "13",
			hintCount:    1,
			explanation:  "8 + 5 = 13.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{
				GradeLevel: 4,
				TopicCode:  "G4-MATH-ADD-001",
				Difficulty: models.DifficultyEasy,
				MaxHints:   tt.maxHints,
				Seed:       tt.seed,
			}

			draft := Deterministic(req)

			if draft.QuestionText != tt.questionText {
				t.Errorf("question text = %q, want %q", draft.QuestionText, tt.questionText)
			}
			if !reflect.DeepEqual(draft.Options, tt.options) {
				t.Errorf("options = %v, want %v", draft.Options, tt.options)
			}
			if draft.CorrectAnswer.Value != tt.answer {
				t.Errorf("correct answer = %q, want %q", draft.CorrectAnswer.Value, tt.answer)
			}
			if len(draft.HintLadder) != tt.hintCount {
				t.Errorf("hint count = %d, want %d", len(draft.HintLadder), tt.hintCount)
			}
			if draft.Explanation != tt.explanation {
				t.Errorf("explanation = %q, want %q", draft.Explanation, tt.explanation)
			}
			if draft.AnswerFormat != "multiple_choice" {
				t.Errorf("answer format = %q, want multiple_choice", draft.AnswerFormat)
			}
		})
	}
}

func TestDeterministicIsPure(t *testing.T) {
	req := Request{TopicCode: "G4-MATH-ADD-001", MaxHints: 3, Seed: 7}

	first := Deterministic(req)
	second := Deterministic(req)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different drafts: %+v vs %+v", first, second)
	}
}

func TestDeterministicPassesValidation(t *testing.T) {
	for seed := 0; seed < 20; seed++ {
		req := Request{TopicCode: "G4-MATH-ADD-001", MaxHints: 3, Seed: seed}
		if err := ValidateDraft(Deterministic(req), req); err != nil {
			t.Errorf("seed %d: draft failed validation: %v", seed, err)
		}
	}
}

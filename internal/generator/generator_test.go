package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"brightpath/internal/llm"
)

func testConfig() Config {
	return Config{
		Provider:         "mock",
		Credential:       "test-key",
		Model:            "mock",
		Timeout:          time.Second,
		MaxRetries:       2,
		LiveCallsEnabled: true,
	}
}

func testRequest() Request {
	return Request{
		GradeLevel: 4,
		TopicCode:  "G4-MATH-ADD-001",
		TopicTitle: "Addition within 1000",
		Strand:     "Number",
		SubStrand:  "Addition",
		Difficulty: "easy",
		MaxHints:   3,
		Seed:       1,
	}
}

func draftJSON(questionText string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"questionText": %q,
		"answerFormat": "multiple_choice",
		"options": ["21", "20", "23"],
		"correctAnswer": {"value": "21"},
		"hintLadder": ["Add the ones.", "Carry the ten.", "Check with 20 + 1."],
		"explanation": "12 + 9 = 21."
	}`, questionText))
}

func TestNewFailsFastOnMissingCredential(t *testing.T) {
	cfg := Config{Provider: "openai", LiveCallsEnabled: true, Timeout: time.Second}

	_, err := New(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected configuration error, got nil")
	}
	if !strings.Contains(err.Error(), "credential is missing") {
		t.Errorf("error = %v, want credential error", err)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := Config{Provider: "llama-farm", Credential: "key", LiveCallsEnabled: true}

	_, err := New(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("error = %v, want unknown provider error", err)
	}
}

func TestNewUsesDeterministicWhenUnconfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no provider", cfg: Config{LiveCallsEnabled: true}},
		{name: "live calls disabled", cfg: Config{Provider: "openai", Credential: "key", LiveCallsEnabled: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(context.Background(), tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			result, err := gen.Generate(context.Background(), testRequest(), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Provenance.Provider != ProviderDeterministic {
				t.Errorf("provenance provider = %q, want %q", result.Provenance.Provider, ProviderDeterministic)
			}
		})
	}
}

func TestGenerateRetriesUntilValidDraft(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrRejected{Status: 503, BodySnippet: "overloaded"}},
		llm.MockResponse{Content: json.RawMessage(`{"questionText": "no tag"}`)},
		llm.MockResponse{Content: draftJSON("[G4-MATH-ADD-001] What is 12 + 9?")},
	)
	gen := NewWithProvider(testConfig(), mock)

	result, err := gen.Generate(context.Background(), testRequest(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Provenance.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", result.Provenance.Attempts)
	}
	if result.Provenance.Provider != "mock" {
		t.Errorf("provenance provider = %q, want mock", result.Provenance.Provider)
	}
	if mock.CallCount() != 3 {
		t.Errorf("provider calls = %d, want 3", mock.CallCount())
	}
}

func TestGenerateSurfacesLastErrorAfterExhaustion(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrTimeout{Err: context.DeadlineExceeded}},
		llm.MockResponse{Err: &llm.ErrTimeout{Err: context.DeadlineExceeded}},
		llm.MockResponse{Err: &llm.ErrRejected{Status: 500, BodySnippet: "boom"}},
	)
	gen := NewWithProvider(testConfig(), mock)

	_, err := gen.Generate(context.Background(), testRequest(), nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	var rejected *llm.ErrRejected
	if !errors.As(err, &rejected) {
		t.Errorf("error = %v, want the last provider error to be surfaced", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("provider calls = %d, want 3", mock.CallCount())
	}
}

func TestGenerateRerollsOnDuplicate(t *testing.T) {
	duplicate := "[G4-MATH-ADD-001] What is 12 + 9?"
	fresh := "[G4-MATH-ADD-001] What is 15 + 6?"

	mock := llm.NewMockProvider(
		llm.MockResponse{Content: draftJSON(duplicate)},
		llm.MockResponse{Content: draftJSON(fresh)},
	)
	gen := NewWithProvider(testConfig(), mock)

	result, err := gen.Generate(context.Background(), testRequest(), []string{duplicate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Draft.QuestionText != fresh {
		t.Errorf("question text = %q, want the re-rolled draft", result.Draft.QuestionText)
	}
	if result.Provenance.Seed != 2 {
		t.Errorf("seed = %d, want incremented seed 2", result.Provenance.Seed)
	}
}

func TestGenerateFailsWhenRerollStillDuplicate(t *testing.T) {
	duplicate := "[G4-MATH-ADD-001] What is 12 + 9?"

	mock := llm.NewMockProvider(
		llm.MockResponse{Content: draftJSON(duplicate)},
		llm.MockResponse{Content: draftJSON(duplicate)},
	)
	gen := NewWithProvider(testConfig(), mock)

	_, err := gen.Generate(context.Background(), testRequest(), []string{duplicate})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("error = %v, want ErrDuplicate", err)
	}
}

func TestGenerateDeterministicRerollChangesSeed(t *testing.T) {
	gen, err := New(context.Background(), Config{LiveCallsEnabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := testRequest()
	existing := []string{Deterministic(req).QuestionText}

	result, err := gen.Generate(context.Background(), req, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rerolled := req
	rerolled.Seed++
	if result.Draft.QuestionText != Deterministic(rerolled).QuestionText {
		t.Errorf("question text = %q, want the seed+1 draft", result.Draft.QuestionText)
	}
}

func TestGeneratePromptCarriesTopicContext(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: draftJSON("[G4-MATH-ADD-001] What is 12 + 9?")},
	)
	gen := NewWithProvider(testConfig(), mock)

	if _, err := gen.Generate(context.Background(), testRequest(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(mock.Calls))
	}
	prompt := mock.Calls[0].Messages[0].Content
	for _, want := range []string{"Grade 4", "G4-MATH-ADD-001", "Addition within 1000", "Number", "exactly 3 progressive hints"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

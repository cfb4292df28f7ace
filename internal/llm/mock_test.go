package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProviderReplaysResponsesInOrder(t *testing.T) {
	provider := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a": 1}`)},
		MockResponse{Err: &ErrTimeout{Err: context.DeadlineExceeded}},
	)

	first, err := provider.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if string(first.Content) != `{"a": 1}` {
		t.Errorf("first content = %s", first.Content)
	}

	_, err = provider.Generate(context.Background(), Request{})
	var timeout *ErrTimeout
	if !errors.As(err, &timeout) {
		t.Fatalf("second call error = %v, want *ErrTimeout", err)
	}

	if provider.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2", provider.CallCount())
	}
}

func TestMockProviderEmptyQueueRejects(t *testing.T) {
	provider := NewMockProvider()

	_, err := provider.Generate(context.Background(), Request{})
	var rejected *ErrRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("error = %v, want *ErrRejected", err)
	}
	if rejected.Status != 503 {
		t.Errorf("Status = %d, want 503", rejected.Status)
	}
}

func TestMockProviderRecordsRequests(t *testing.T) {
	provider := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	req := Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hello"}}}
	if _, err := provider.Generate(context.Background(), req); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if len(provider.Calls) != 1 {
		t.Fatalf("Calls = %d, want 1", len(provider.Calls))
	}
	if provider.Calls[0].System != "sys" || provider.Calls[0].Messages[0].Content != "hello" {
		t.Errorf("recorded request = %+v", provider.Calls[0])
	}
}

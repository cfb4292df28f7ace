package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"brightpath/internal/apperrors"
)

func TestRespondErrorWritesEnvelope(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondError(recorder, apperrors.Validation("Invalid request payload",
		apperrors.Detail{Field: "learnerId", Reason: "invalid_uuid"}))

	if recorder.Code != 400 {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if envelope.Error.Code != apperrors.CodeValidation {
		t.Errorf("code = %s, want %s", envelope.Error.Code, apperrors.CodeValidation)
	}
	if envelope.Error.Message != "Invalid request payload" {
		t.Errorf("message = %q, want %q", envelope.Error.Message, "Invalid request payload")
	}
	if len(envelope.Error.Details) != 1 || envelope.Error.Details[0].Reason != "invalid_uuid" {
		t.Errorf("details = %+v, want one invalid_uuid detail", envelope.Error.Details)
	}
}

func TestRespondErrorHidesInternalCause(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondError(recorder, errors.New("pq: connection refused"))

	if recorder.Code != 500 {
		t.Fatalf("expected status 500, got %d", recorder.Code)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if envelope.Error.Code != apperrors.CodeInternalError {
		t.Errorf("code = %s, want %s", envelope.Error.Code, apperrors.CodeInternalError)
	}
	if envelope.Error.Message != "An unexpected error occurred" {
		t.Errorf("message = %q leaks the cause", envelope.Error.Message)
	}
}

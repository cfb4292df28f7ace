package service

import (
	"errors"
	"testing"

	"brightpath/internal/apperrors"
)

func TestCreateLearnerValidation(t *testing.T) {
	// Validation runs before any repository call, so a nil repo is safe
	// for the rejection paths.
	svc := NewLearnerService(nil)

	tests := []struct {
		name   string
		input  CreateLearnerInput
		field  string
		reason string
	}{
		{
			name:   "missing first name",
			input:  CreateLearnerInput{GradeLevel: 4},
			field:  "firstName",
			reason: "missing",
		},
		{
			name:   "whitespace first name",
			input:  CreateLearnerInput{FirstName: "   ", GradeLevel: 4},
			field:  "firstName",
			reason: "missing",
		},
		{
			name:   "grade level zero",
			input:  CreateLearnerInput{FirstName: "Ada"},
			field:  "gradeLevel",
			reason: "out_of_range",
		},
		{
			name:   "grade level too high",
			input:  CreateLearnerInput{FirstName: "Ada", GradeLevel: 13},
			field:  "gradeLevel",
			reason: "out_of_range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateLearner("parent-1", tt.input)
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			var appErr *apperrors.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("Expected an application error, got %v", err)
			}
			if appErr.Code != apperrors.CodeValidation {
				t.Fatalf("Expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
			}
			found := false
			for _, d := range appErr.Details {
				if d.Field == tt.field && d.Reason == tt.reason {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected detail {%s %s}, got %v", tt.field, tt.reason, appErr.Details)
			}
		})
	}
}

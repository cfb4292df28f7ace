package service

import (
	"strings"
	"time"

	"brightpath/internal/apperrors"
	"brightpath/internal/repository"
)

// LearnerService handles learner onboarding for a parent account.
type LearnerService struct {
	learnerRepo *repository.LearnerRepository
}

// NewLearnerService creates a new learner service
func NewLearnerService(learnerRepo *repository.LearnerRepository) *LearnerService {
	return &LearnerService{learnerRepo: learnerRepo}
}

// CreateLearnerInput is the payload for registering a learner
type CreateLearnerInput struct {
	FirstName  string  `json:"firstName"`
	LastName   *string `json:"lastName,omitempty"`
	GradeLevel int     `json:"gradeLevel"`
}

// CreateLearnerOutput is the response for a newly registered learner
type CreateLearnerOutput struct {
	LearnerID  string    `json:"learnerId"`
	FirstName  string    `json:"firstName"`
	GradeLevel int       `json:"gradeLevel"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateLearner registers a learner under the authenticated parent.
func (s *LearnerService) CreateLearner(parentUserID string, in CreateLearnerInput) (*CreateLearnerOutput, error) {
	firstName := strings.TrimSpace(in.FirstName)

	var details []apperrors.Detail
	if firstName == "" {
		details = append(details, apperrors.Detail{Field: "firstName", Reason: "missing"})
	}
	if in.GradeLevel < 1 || in.GradeLevel > 12 {
		details = append(details, apperrors.Detail{Field: "gradeLevel", Reason: "out_of_range"})
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Invalid request payload", details...)
	}

	var lastName *string
	if in.LastName != nil {
		trimmed := strings.TrimSpace(*in.LastName)
		if trimmed != "" {
			lastName = &trimmed
		}
	}

	learner, err := s.learnerRepo.Create(parentUserID, firstName, lastName, in.GradeLevel)
	if err != nil {
		return nil, apperrors.From(err)
	}

	return &CreateLearnerOutput{
		LearnerID:  learner.ID,
		FirstName:  learner.FirstName,
		GradeLevel: learner.GradeLevel,
		CreatedAt:  learner.CreatedAt,
	}, nil
}

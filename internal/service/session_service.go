package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"brightpath/internal/apperrors"
	"brightpath/internal/generator"
	"brightpath/internal/models"
	"brightpath/internal/repository"
)

// SessionService owns the learning session lifecycle: starting a session,
// generating questions into it, and completing it.
type SessionService struct {
	learnerRepo  *repository.LearnerRepository
	topicRepo    *repository.TopicRepository
	sessionRepo  *repository.SessionRepository
	questionRepo *repository.QuestionRepository
	generator    *generator.Generator
}

// NewSessionService creates a new session service
func NewSessionService(
	learnerRepo *repository.LearnerRepository,
	topicRepo *repository.TopicRepository,
	sessionRepo *repository.SessionRepository,
	questionRepo *repository.QuestionRepository,
	gen *generator.Generator,
) *SessionService {
	return &SessionService{
		learnerRepo:  learnerRepo,
		topicRepo:    topicRepo,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		generator:    gen,
	}
}

// TopicRef is a topic reference embedded in session responses
type TopicRef struct {
	ID        string `json:"id"`
	TopicCode string `json:"topicCode"`
	Title     string `json:"title"`
}

// StartSessionInput is the payload for starting a session
type StartSessionInput struct {
	LearnerID      string `json:"learnerId"`
	Mode           string `json:"mode"`
	FocusTopicCode string `json:"focusTopicCode,omitempty"`
}

// StartSessionOutput is the response for a started session
type StartSessionOutput struct {
	SessionID  string    `json:"sessionId"`
	LearnerID  string    `json:"learnerId"`
	Mode       string    `json:"mode"`
	FocusTopic *TopicRef `json:"focusTopic"`
	StartedAt  time.Time `json:"startedAt"`
}

// Start opens a new learning session for a learner owned by the parent
func (s *SessionService) Start(parentUserID string, in StartSessionInput) (*StartSessionOutput, error) {
	var details []apperrors.Detail
	if in.LearnerID == "" {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "missing"})
	} else if uuid.Validate(in.LearnerID) != nil {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "invalid_uuid"})
	}
	if in.Mode == "" {
		details = append(details, apperrors.Detail{Field: "mode", Reason: "missing"})
	} else if !models.ValidSessionMode(in.Mode) {
		details = append(details, apperrors.Detail{Field: "mode", Reason: "invalid_value"})
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Invalid request payload", details...)
	}

	learner, err := s.learnerRepo.GetByID(in.LearnerID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if learner == nil {
		return nil, apperrors.NotFound("Learner not found")
	}
	if learner.ParentUserID != parentUserID {
		return nil, apperrors.Forbidden("Learner does not belong to authenticated parent")
	}

	var focusTopic *TopicRef
	var focusTopicID *string
	if in.FocusTopicCode != "" {
		topic, err := s.topicRepo.GetActiveByCodeForGrade(in.FocusTopicCode, learner.GradeLevel)
		if err != nil {
			return nil, apperrors.From(err)
		}
		if topic == nil {
			return nil, apperrors.Validation("focusTopicCode must be active and grade-appropriate",
				apperrors.Detail{Field: "focusTopicCode", Reason: "not_found_or_not_allowed"})
		}
		focusTopic = &TopicRef{ID: topic.ID, TopicCode: topic.TopicCode, Title: topic.TopicTitle}
		focusTopicID = &topic.ID
	}

	session, err := s.sessionRepo.Create(learner.ID, focusTopicID, models.SessionMode(in.Mode))
	if err != nil {
		return nil, apperrors.From(err)
	}

	return &StartSessionOutput{
		SessionID:  session.ID,
		LearnerID:  session.LearnerID,
		Mode:       string(session.Mode),
		FocusTopic: focusTopic,
		StartedAt:  session.StartedAt,
	}, nil
}

// GenerateQuestionInput is the payload for generating the next question
type GenerateQuestionInput struct {
	LearnerID        string `json:"learnerId"`
	TargetDifficulty string `json:"targetDifficulty"`
	MaxHints         int    `json:"maxHints"`
}

// GenerateQuestionOutput is the learner-facing view of a generated
// question. The correct answer and explanation are deliberately absent.
type GenerateQuestionOutput struct {
	QuestionID   string    `json:"questionId"`
	SessionID    string    `json:"sessionId"`
	Topic        TopicRef  `json:"topic"`
	Difficulty   string    `json:"difficulty"`
	QuestionText string    `json:"questionText"`
	AnswerFormat string    `json:"answerFormat"`
	Options      []string  `json:"options"`
	HintCount    int       `json:"hintCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GenerateQuestion produces and persists the next question for an open
// session
func (s *SessionService) GenerateQuestion(ctx context.Context, parentUserID, sessionID string, in GenerateQuestionInput) (*GenerateQuestionOutput, error) {
	if uuid.Validate(sessionID) != nil {
		return nil, apperrors.Validation("Invalid session identifier",
			apperrors.Detail{Field: "sessionId", Reason: "invalid_uuid"})
	}

	var details []apperrors.Detail
	if in.LearnerID == "" {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "missing"})
	} else if uuid.Validate(in.LearnerID) != nil {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "invalid_uuid"})
	}
	if in.TargetDifficulty == "" {
		details = append(details, apperrors.Detail{Field: "targetDifficulty", Reason: "missing"})
	} else if !models.ValidDifficulty(in.TargetDifficulty) {
		details = append(details, apperrors.Detail{Field: "targetDifficulty", Reason: "invalid_value"})
	}
	if in.MaxHints < 1 {
		details = append(details, apperrors.Detail{Field: "maxHints", Reason: "must_be_positive_integer"})
	} else if in.MaxHints > maxHintLevels {
		details = append(details, apperrors.Detail{Field: "maxHints", Reason: "out_of_range"})
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Invalid request payload", details...)
	}

	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session not found")
	}

	learner, err := s.learnerRepo.GetByID(session.LearnerID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if learner == nil || learner.ParentUserID != parentUserID {
		return nil, apperrors.Forbidden("Session does not belong to authenticated parent")
	}
	if session.LearnerID != in.LearnerID {
		return nil, apperrors.Validation("learnerId must match the session learner",
			apperrors.Detail{Field: "learnerId", Reason: "mismatch"})
	}
	if session.IsClosed() {
		return nil, apperrors.Validation("Session is already completed",
			apperrors.Detail{Field: "sessionId", Reason: "already_completed"})
	}

	topic, err := s.resolveTopic(session, learner.GradeLevel)
	if err != nil {
		return nil, err
	}

	existingCount, err := s.questionRepo.CountBySession(sessionID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	existingTexts, err := s.questionRepo.TextsBySession(sessionID)
	if err != nil {
		return nil, apperrors.From(err)
	}

	result, err := s.generator.Generate(ctx, generator.Request{
		GradeLevel: learner.GradeLevel,
		TopicCode:  topic.TopicCode,
		TopicTitle: topic.TopicTitle,
		Strand:     topic.Strand,
		SubStrand:  topic.SubStrand,
		Difficulty: models.Difficulty(in.TargetDifficulty),
		MaxHints:   in.MaxHints,
		Seed:       existingCount + 1,
	}, existingTexts)
	if err != nil {
		if errors.Is(err, generator.ErrDuplicate) {
			return nil, apperrors.Internal("Unable to generate a fresh question", err)
		}
		return nil, apperrors.Internal("Failed to generate question", err)
	}

	question := &models.GeneratedQuestion{
		SessionID:     sessionID,
		LearnerID:     in.LearnerID,
		TopicID:       topic.ID,
		Difficulty:    models.Difficulty(in.TargetDifficulty),
		QuestionText:  result.Draft.QuestionText,
		AnswerFormat:  models.AnswerFormat(result.Draft.AnswerFormat),
		Options:       result.Draft.Options,
		CorrectAnswer: result.Draft.CorrectAnswer.Value,
		HintLadder:    result.Draft.HintLadder,
		Explanation:   result.Draft.Explanation,
		Provider:      result.Provenance.Provider,
		Model:         result.Provenance.Model,
		GenAttempts:   result.Provenance.Attempts,
		Seed:          result.Provenance.Seed,
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, apperrors.From(err)
	}

	return &GenerateQuestionOutput{
		QuestionID:   question.ID,
		SessionID:    question.SessionID,
		Topic:        TopicRef{ID: topic.ID, TopicCode: topic.TopicCode, Title: topic.TopicTitle},
		Difficulty:   string(question.Difficulty),
		QuestionText: question.QuestionText,
		AnswerFormat: string(question.AnswerFormat),
		Options:      question.Options,
		HintCount:    in.MaxHints,
		CreatedAt:    question.CreatedAt,
	}, nil
}

// resolveTopic picks the session's focus topic, falling back to the
// oldest active topic for the learner's grade
func (s *SessionService) resolveTopic(session *models.LearningSession, gradeLevel int) (*models.Topic, error) {
	var topic *models.Topic
	var err error
	if session.FocusTopicID != nil {
		topic, err = s.topicRepo.GetByID(*session.FocusTopicID)
	} else {
		topic, err = s.topicRepo.FirstActiveForGrade(gradeLevel)
	}
	if err != nil {
		return nil, apperrors.From(err)
	}
	if topic == nil {
		return nil, apperrors.NotFound("No active topic found for session")
	}
	return topic, nil
}

// CompleteSessionInput is the payload for completing a session
type CompleteSessionInput struct {
	LearnerID       string   `json:"learnerId"`
	EngagementScore *float64 `json:"engagementScore"`
}

// SessionSummary reports the final counters of a completed session
type SessionSummary struct {
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	AvgHintsUsed   float64 `json:"avgHintsUsed"`
}

// CompleteSessionOutput is the response for a completed session
type CompleteSessionOutput struct {
	SessionID string         `json:"sessionId"`
	EndedAt   time.Time      `json:"endedAt"`
	Summary   SessionSummary `json:"summary"`
}

// Complete closes an open session and records its engagement score.
// Completing twice is rejected and leaves the original end time intact.
func (s *SessionService) Complete(parentUserID, sessionID string, in CompleteSessionInput) (*CompleteSessionOutput, error) {
	if uuid.Validate(sessionID) != nil {
		return nil, apperrors.Validation("Invalid session identifier",
			apperrors.Detail{Field: "sessionId", Reason: "invalid_uuid"})
	}

	var details []apperrors.Detail
	if in.LearnerID == "" {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "missing"})
	} else if uuid.Validate(in.LearnerID) != nil {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "invalid_uuid"})
	}
	if in.EngagementScore == nil {
		details = append(details, apperrors.Detail{Field: "engagementScore", Reason: "must_be_number"})
	} else if *in.EngagementScore < 0 || *in.EngagementScore > 100 {
		details = append(details, apperrors.Detail{Field: "engagementScore", Reason: "out_of_range"})
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Invalid request payload", details...)
	}

	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session not found")
	}

	learner, err := s.learnerRepo.GetByID(session.LearnerID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if learner == nil || learner.ParentUserID != parentUserID {
		return nil, apperrors.Forbidden("Session does not belong to authenticated parent")
	}
	if session.LearnerID != in.LearnerID {
		return nil, apperrors.Validation("learnerId must match the session learner",
			apperrors.Detail{Field: "learnerId", Reason: "mismatch"})
	}
	if session.IsClosed() {
		return nil, apperrors.Validation("Session is already completed",
			apperrors.Detail{Field: "sessionId", Reason: "already_completed"})
	}

	endedAt := time.Now().UTC()
	closed, err := s.sessionRepo.Complete(sessionID, endedAt, round2(*in.EngagementScore))
	if err != nil {
		return nil, apperrors.From(err)
	}
	if !closed {
		// Lost the race against a concurrent complete.
		return nil, apperrors.Validation("Session is already completed",
			apperrors.Detail{Field: "sessionId", Reason: "already_completed"})
	}

	return &CompleteSessionOutput{
		SessionID: sessionID,
		EndedAt:   endedAt,
		Summary: SessionSummary{
			TotalQuestions: session.TotalQuestions,
			CorrectAnswers: session.CorrectAnswers,
			AvgHintsUsed:   round2(session.AvgHintsUsed),
		},
	}, nil
}

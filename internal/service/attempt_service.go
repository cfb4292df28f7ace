package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"brightpath/internal/apperrors"
	"brightpath/internal/database"
	"brightpath/internal/models"
	"brightpath/internal/repository"
)

// errHintConflict marks a lost compare-and-set race on hint progress
var errHintConflict = errors.New("hint progress changed concurrently")

// AttemptService owns the per-question learner interactions: releasing
// hints and evaluating submitted answers.
type AttemptService struct {
	db           *database.DB
	learnerRepo  *repository.LearnerRepository
	topicRepo    *repository.TopicRepository
	sessionRepo  *repository.SessionRepository
	questionRepo *repository.QuestionRepository
	hintRepo     *repository.HintRepository
	attemptRepo  *repository.AttemptRepository
	snapshotRepo *repository.SnapshotRepository
}

// NewAttemptService creates a new attempt service
func NewAttemptService(
	db *database.DB,
	learnerRepo *repository.LearnerRepository,
	topicRepo *repository.TopicRepository,
	sessionRepo *repository.SessionRepository,
	questionRepo *repository.QuestionRepository,
	hintRepo *repository.HintRepository,
	attemptRepo *repository.AttemptRepository,
	snapshotRepo *repository.SnapshotRepository,
) *AttemptService {
	return &AttemptService{
		db:           db,
		learnerRepo:  learnerRepo,
		topicRepo:    topicRepo,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		hintRepo:     hintRepo,
		attemptRepo:  attemptRepo,
		snapshotRepo: snapshotRepo,
	}
}

// loadOwnedQuestion fetches a question and verifies the ownership chain:
// the question must exist, belong to a learner of the authenticated
// parent, and match the learnerId in the payload.
func (s *AttemptService) loadOwnedQuestion(parentUserID, questionID, learnerID string) (*models.GeneratedQuestion, error) {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if question == nil {
		return nil, apperrors.NotFound("Question not found")
	}

	learner, err := s.learnerRepo.GetByID(question.LearnerID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if learner == nil || learner.ParentUserID != parentUserID {
		return nil, apperrors.Forbidden("Question does not belong to authenticated parent")
	}
	if question.LearnerID != learnerID {
		return nil, apperrors.Validation("learnerId must match the question learner",
			apperrors.Detail{Field: "learnerId", Reason: "mismatch"})
	}
	return question, nil
}

// RequestHintInput is the payload for requesting a hint
type RequestHintInput struct {
	LearnerID string `json:"learnerId"`
	HintLevel int    `json:"hintLevel"`
}

// RequestHintOutput is the response for a released hint
type RequestHintOutput struct {
	QuestionID string `json:"questionId"`
	HintLevel  int    `json:"hintLevel"`
	HintText   string `json:"hintText"`
}

// RequestHint releases one rung of a question's hint ladder. Hints must
// be requested in order; re-requesting an already released level returns
// the same text without changing state.
func (s *AttemptService) RequestHint(parentUserID, questionID string, in RequestHintInput) (*RequestHintOutput, error) {
	if uuid.Validate(questionID) != nil {
		return nil, apperrors.Validation("Invalid question identifier",
			apperrors.Detail{Field: "questionId", Reason: "invalid_uuid"})
	}

	var details []apperrors.Detail
	if in.LearnerID == "" {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "missing"})
	} else if uuid.Validate(in.LearnerID) != nil {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "invalid_uuid"})
	}
	if in.HintLevel < 1 || in.HintLevel > maxHintLevels {
		details = append(details, apperrors.Detail{Field: "hintLevel", Reason: "out_of_range"})
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Invalid request payload", details...)
	}

	question, err := s.loadOwnedQuestion(parentUserID, questionID, in.LearnerID)
	if err != nil {
		return nil, err
	}

	if err := s.releaseHint(questionID, in.LearnerID, in.HintLevel, len(question.HintLadder)); err != nil {
		return nil, err
	}

	return &RequestHintOutput{
		QuestionID: questionID,
		HintLevel:  in.HintLevel,
		HintText:   question.HintLadder[in.HintLevel-1],
	}, nil
}

// hintRuling is the outcome of checking a hint request against the
// learner's released level
type hintRuling int

const (
	hintAdvance     hintRuling = iota // next rung, release it
	hintRepeat                        // already released, return it again
	hintSkip                          // jumps ahead of the ladder
	hintUnavailable                   // beyond the ladder
)

// ruleHintRequest decides how a request for one hint level relates to
// the current released level. Levels advance one at a time and never
// decrease.
func ruleHintRequest(level, current, ladderLen int) hintRuling {
	switch {
	case level > ladderLen:
		return hintUnavailable
	case level <= current:
		return hintRepeat
	case level == current+1:
		return hintAdvance
	default:
		return hintSkip
	}
}

// releaseHint advances the released level to the requested one.
// Concurrent requests for the same level race on an insert or a
// compare-and-set update; the loser re-reads and treats the level as
// already released.
func (s *AttemptService) releaseHint(questionID, learnerID string, level, ladderLen int) error {
	progress, err := s.hintRepo.Get(questionID, learnerID)
	if err != nil {
		return apperrors.From(err)
	}
	current := 0
	if progress != nil {
		current = progress.ReleasedLevel
	}

	switch ruleHintRequest(level, current, ladderLen) {
	case hintUnavailable:
		return apperrors.Validation("Requested hint level exceeds the hint ladder",
			apperrors.Detail{Field: "hintLevel", Reason: "not_available"})
	case hintRepeat:
		return nil
	case hintSkip:
		return apperrors.Validation("Hints must be requested in order",
			apperrors.Detail{Field: "hintLevel", Reason: "must_request_sequentially"})
	}

	if progress == nil {
		err = s.hintRepo.InsertFirst(questionID, learnerID, level)
	} else {
		var advanced bool
		advanced, err = s.hintRepo.AdvanceFrom(questionID, learnerID, current, level)
		if err == nil && !advanced {
			err = errHintConflict
		}
	}
	if err == nil {
		return nil
	}

	// Insert or CAS lost a race; re-read and accept if the level is
	// now covered.
	progress, rerr := s.hintRepo.Get(questionID, learnerID)
	if rerr != nil {
		return apperrors.From(rerr)
	}
	if progress != nil && progress.ReleasedLevel >= level {
		return nil
	}
	return apperrors.From(err)
}

// SubmitAttemptInput is the payload for submitting an answer
type SubmitAttemptInput struct {
	LearnerID           string  `json:"learnerId"`
	SubmittedAnswer     *string `json:"submittedAnswer"`
	HintsUsed           int     `json:"hintsUsed"`
	ResponseTimeSeconds *int    `json:"responseTimeSeconds"`
}

// MasteryUpdate reports the learner's recomputed topic standing after
// an attempt
type MasteryUpdate struct {
	TopicID               string  `json:"topicId"`
	TopicCode             string  `json:"topicCode"`
	AttemptsCount         int     `json:"attemptsCount"`
	AccuracyPercent       float64 `json:"accuracyPercent"`
	HintDependencyPercent float64 `json:"hintDependencyPercent"`
	MasteryScore          float64 `json:"masteryScore"`
	Proficiency           string  `json:"proficiency"`
}

// SessionProgress reports the session counters after an attempt
type SessionProgress struct {
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
	AvgHintsUsed   float64 `json:"avgHintsUsed"`
}

// SubmitAttemptOutput is the response for an evaluated attempt
type SubmitAttemptOutput struct {
	AttemptID                 string          `json:"attemptId"`
	QuestionID                string          `json:"questionId"`
	IsCorrect                 bool            `json:"isCorrect"`
	Feedback                  string          `json:"feedback"`
	Explanation               string          `json:"explanation"`
	MasteryUpdate             MasteryUpdate   `json:"masteryUpdate"`
	SessionProgress           SessionProgress `json:"sessionProgress"`
	NextRecommendedDifficulty string          `json:"nextRecommendedDifficulty"`
}

// SubmitAttempt evaluates a submitted answer, records the attempt, and
// updates the session counters and the learner's daily mastery snapshot
// in one transaction.
func (s *AttemptService) SubmitAttempt(parentUserID, questionID string, in SubmitAttemptInput) (*SubmitAttemptOutput, error) {
	if uuid.Validate(questionID) != nil {
		return nil, apperrors.Validation("Invalid question identifier",
			apperrors.Detail{Field: "questionId", Reason: "invalid_uuid"})
	}

	var details []apperrors.Detail
	if in.LearnerID == "" {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "missing"})
	} else if uuid.Validate(in.LearnerID) != nil {
		details = append(details, apperrors.Detail{Field: "learnerId", Reason: "invalid_uuid"})
	}
	if in.SubmittedAnswer == nil {
		details = append(details, apperrors.Detail{Field: "submittedAnswer", Reason: "missing"})
	}
	if in.HintsUsed < 0 || in.HintsUsed > maxHintLevels {
		details = append(details, apperrors.Detail{Field: "hintsUsed", Reason: "out_of_range"})
	}
	if in.ResponseTimeSeconds != nil && *in.ResponseTimeSeconds < 1 {
		details = append(details, apperrors.Detail{Field: "responseTimeSeconds", Reason: "must_be_positive"})
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Invalid request payload", details...)
	}

	question, err := s.loadOwnedQuestion(parentUserID, questionID, in.LearnerID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByID(question.SessionID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session not found")
	}
	if session.IsClosed() {
		return nil, apperrors.Validation("Session is already completed",
			apperrors.Detail{Field: "sessionId", Reason: "already_completed"})
	}

	topic, err := s.topicRepo.GetByID(question.TopicID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if topic == nil {
		return nil, apperrors.NotFound("Topic not found")
	}

	isCorrect, feedback := EvaluateAnswer(*in.SubmittedAnswer, question.CorrectAnswer)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, apperrors.From(err)
	}
	defer tx.Rollback()

	// Re-check inside the transaction. A concurrent Complete could have
	// closed the session between the read above and Begin.
	session, err = s.sessionRepo.WithTx(tx).GetByID(question.SessionID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if session == nil || session.IsClosed() {
		return nil, apperrors.Validation("Session is already completed",
			apperrors.Detail{Field: "sessionId", Reason: "already_completed"})
	}

	attempt := &models.QuestionAttempt{
		QuestionID:          questionID,
		LearnerID:           in.LearnerID,
		SubmittedAnswer:     *in.SubmittedAnswer,
		IsCorrect:           isCorrect,
		HintsUsed:           in.HintsUsed,
		ResponseTimeSeconds: in.ResponseTimeSeconds,
		FeedbackText:        feedback,
	}
	if err := s.attemptRepo.WithTx(tx).Create(attempt); err != nil {
		return nil, apperrors.From(err)
	}

	sessionStats, err := s.attemptRepo.WithTx(tx).SessionStats(question.SessionID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	avgHints := round2(sessionStats.AvgHintsUsed)
	if err := s.sessionRepo.WithTx(tx).UpdateProgress(question.SessionID, sessionStats.Attempts, sessionStats.Correct, avgHints); err != nil {
		return nil, apperrors.From(err)
	}

	topicStats, err := s.attemptRepo.WithTx(tx).TopicStats(in.LearnerID, question.TopicID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	mastery := ComputeMastery(topicStats)

	snapshot := &models.MasterySnapshot{
		LearnerID:             in.LearnerID,
		TopicID:               question.TopicID,
		SnapshotDate:          startOfDayUTC(time.Now().UTC()),
		AttemptsCount:         mastery.AttemptsCount,
		AccuracyPercent:       mastery.AccuracyPercent,
		HintDependencyPercent: mastery.HintDependencyPercent,
		MasteryScore:          mastery.MasteryScore,
		Proficiency:           mastery.Proficiency,
	}
	if err := s.snapshotRepo.WithTx(tx).Upsert(snapshot); err != nil {
		return nil, apperrors.From(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.From(err)
	}

	return &SubmitAttemptOutput{
		AttemptID:   attempt.ID,
		QuestionID:  questionID,
		IsCorrect:   isCorrect,
		Feedback:    feedback,
		Explanation: question.Explanation,
		MasteryUpdate: MasteryUpdate{
			TopicID:               question.TopicID,
			TopicCode:             topic.TopicCode,
			AttemptsCount:         mastery.AttemptsCount,
			AccuracyPercent:       mastery.AccuracyPercent,
			HintDependencyPercent: mastery.HintDependencyPercent,
			MasteryScore:          mastery.MasteryScore,
			Proficiency:           mastery.Proficiency.Label(),
		},
		SessionProgress: SessionProgress{
			TotalQuestions: sessionStats.Attempts,
			CorrectAnswers: sessionStats.Correct,
			AvgHintsUsed:   avgHints,
		},
		NextRecommendedDifficulty: string(NextDifficulty(mastery.AccuracyPercent, mastery.HintDependencyPercent)),
	}, nil
}

package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"brightpath/internal/apperrors"
	"brightpath/internal/config"
	"brightpath/internal/database"
	"brightpath/internal/generator"
	"brightpath/internal/repository"
)

type testEnv struct {
	db             *database.DB
	learnerService *LearnerService
	sessionService *SessionService
	attemptService *AttemptService
	reportService  *ReportService
	sessionRepo    *repository.SessionRepository
	questionRepo   *repository.QuestionRepository
	hintRepo       *repository.HintRepository
	snapshotRepo   *repository.SnapshotRepository
}

// newTestEnv initializes a sqlite-backed service stack against a fresh
// database file with migrations and default topics applied. The
// deterministic generator keeps question content reproducible.
func newTestEnv(t *testing.T, dbPath string) *testEnv {
	t.Helper()

	db, err := database.Initialize(&config.Config{DatabaseType: "sqlite", DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if err := db.SeedDefaultTopics(); err != nil {
		t.Fatalf("Failed to seed topics: %v", err)
	}

	gen, err := generator.New(context.Background(), generator.Config{})
	if err != nil {
		t.Fatalf("Failed to build generator: %v", err)
	}

	learnerRepo := repository.NewLearnerRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	hintRepo := repository.NewHintRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	recommendationRepo := repository.NewRecommendationRepository(db)

	return &testEnv{
		db:             db,
		learnerService: NewLearnerService(learnerRepo),
		sessionService: NewSessionService(learnerRepo, topicRepo, sessionRepo, questionRepo, gen),
		attemptService: NewAttemptService(db, learnerRepo, topicRepo, sessionRepo, questionRepo, hintRepo, attemptRepo, snapshotRepo),
		reportService:  NewReportService(learnerRepo, topicRepo, attemptRepo, snapshotRepo, recommendationRepo),
		sessionRepo:    sessionRepo,
		questionRepo:   questionRepo,
		hintRepo:       hintRepo,
		snapshotRepo:   snapshotRepo,
	}
}

// newLearner registers a grade-4 learner for the parent
func (env *testEnv) newLearner(t *testing.T, parentUserID string) string {
	t.Helper()
	learner, err := env.learnerService.CreateLearner(parentUserID, CreateLearnerInput{
		FirstName:  "Ada",
		GradeLevel: 4,
	})
	if err != nil {
		t.Fatalf("Failed to create learner: %v", err)
	}
	return learner.LearnerID
}

func assertValidationReason(t *testing.T, err error, field, reason string) {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected an application error, got %v", err)
	}
	if appErr.Code != apperrors.CodeValidation {
		t.Fatalf("Expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
	for _, d := range appErr.Details {
		if d.Field == field && d.Reason == reason {
			return
		}
	}
	t.Fatalf("Expected detail {%s %s}, got %v", field, reason, appErr.Details)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

// TestSessionLifecycleIntegration walks a session from start through
// question generation, hints, a correct attempt and completion, then
// verifies the closed session rejects further writes without moving its
// end time.
func TestSessionLifecycleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := "test_lifecycle.db"
	defer os.Remove(dbPath)

	env := newTestEnv(t, dbPath)
	defer env.db.Close()

	parent := "parent-lifecycle"
	learnerID := env.newLearner(t, parent)
	ctx := context.Background()

	topics, err := env.reportService.ListTopics(parent, learnerID)
	if err != nil {
		t.Fatalf("Failed to list topics: %v", err)
	}
	if len(topics.Topics) != 4 {
		t.Fatalf("Expected 4 grade-4 topics, got %d", len(topics.Topics))
	}

	started, err := env.sessionService.Start(parent, StartSessionInput{
		LearnerID:      learnerID,
		Mode:           "practice",
		FocusTopicCode: "G4-MATH-ADD-001",
	})
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	if started.FocusTopic == nil || started.FocusTopic.TopicCode != "G4-MATH-ADD-001" {
		t.Fatalf("Expected focus topic G4-MATH-ADD-001, got %+v", started.FocusTopic)
	}

	question, err := env.sessionService.GenerateQuestion(ctx, parent, started.SessionID, GenerateQuestionInput{
		LearnerID:        learnerID,
		TargetDifficulty: "easy",
		MaxHints:         3,
	})
	if err != nil {
		t.Fatalf("Failed to generate question: %v", err)
	}
	if question.QuestionText != "[G4-MATH-ADD-001] What is 7 + 4?" {
		t.Errorf("Unexpected question text: %s", question.QuestionText)
	}
	if question.AnswerFormat != "multiple_choice" {
		t.Errorf("Expected multiple_choice format, got %s", question.AnswerFormat)
	}
	if question.HintCount != 3 {
		t.Errorf("Expected 3 hints, got %d", question.HintCount)
	}

	// Hints release in order. Skipping ahead is rejected and repeating
	// an already released level returns the same text.
	hint1, err := env.attemptService.RequestHint(parent, question.QuestionID, RequestHintInput{
		LearnerID: learnerID,
		HintLevel: 1,
	})
	if err != nil {
		t.Fatalf("Failed to request hint 1: %v", err)
	}

	_, err = env.attemptService.RequestHint(parent, question.QuestionID, RequestHintInput{
		LearnerID: learnerID,
		HintLevel: 3,
	})
	assertValidationReason(t, err, "hintLevel", "must_request_sequentially")

	repeat, err := env.attemptService.RequestHint(parent, question.QuestionID, RequestHintInput{
		LearnerID: learnerID,
		HintLevel: 1,
	})
	if err != nil {
		t.Fatalf("Failed to repeat hint 1: %v", err)
	}
	if repeat.HintText != hint1.HintText {
		t.Errorf("Repeated hint text changed: %s vs %s", repeat.HintText, hint1.HintText)
	}

	if _, err := env.attemptService.RequestHint(parent, question.QuestionID, RequestHintInput{
		LearnerID: learnerID,
		HintLevel: 2,
	}); err != nil {
		t.Fatalf("Failed to request hint 2: %v", err)
	}

	stored, err := env.questionRepo.GetByID(question.QuestionID)
	if err != nil {
		t.Fatalf("Failed to load stored question: %v", err)
	}

	attempt, err := env.attemptService.SubmitAttempt(parent, question.QuestionID, SubmitAttemptInput{
		LearnerID:           learnerID,
		SubmittedAnswer:     strPtr(stored.CorrectAnswer),
		HintsUsed:           2,
		ResponseTimeSeconds: intPtr(12),
	})
	if err != nil {
		t.Fatalf("Failed to submit attempt: %v", err)
	}
	if !attempt.IsCorrect {
		t.Error("Expected a correct attempt")
	}
	if attempt.Feedback != "Great job. That answer is correct." {
		t.Errorf("Unexpected feedback: %s", attempt.Feedback)
	}
	if attempt.MasteryUpdate.AccuracyPercent != 100 {
		t.Errorf("Expected 100%% accuracy, got %v", attempt.MasteryUpdate.AccuracyPercent)
	}
	if attempt.SessionProgress.TotalQuestions != 1 || attempt.SessionProgress.CorrectAnswers != 1 {
		t.Errorf("Unexpected session progress: %+v", attempt.SessionProgress)
	}

	completed, err := env.sessionService.Complete(parent, started.SessionID, CompleteSessionInput{
		LearnerID:       learnerID,
		EngagementScore: floatPtr(80),
	})
	if err != nil {
		t.Fatalf("Failed to complete session: %v", err)
	}
	if completed.Summary.TotalQuestions != 1 || completed.Summary.CorrectAnswers != 1 {
		t.Errorf("Unexpected summary: %+v", completed.Summary)
	}
	if completed.Summary.AvgHintsUsed != 2 {
		t.Errorf("Expected avg hints 2, got %v", completed.Summary.AvgHintsUsed)
	}

	closed, err := env.sessionRepo.GetByID(started.SessionID)
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if closed.EndedAt == nil {
		t.Fatal("Expected ended_at to be set after completion")
	}
	firstEndedAt := *closed.EndedAt

	// The closed session rejects generation, attempts and a second
	// completion the same way.
	_, err = env.sessionService.GenerateQuestion(ctx, parent, started.SessionID, GenerateQuestionInput{
		LearnerID:        learnerID,
		TargetDifficulty: "easy",
		MaxHints:         3,
	})
	assertValidationReason(t, err, "sessionId", "already_completed")

	_, err = env.attemptService.SubmitAttempt(parent, question.QuestionID, SubmitAttemptInput{
		LearnerID:       learnerID,
		SubmittedAnswer: strPtr(stored.CorrectAnswer),
	})
	assertValidationReason(t, err, "sessionId", "already_completed")

	_, err = env.sessionService.Complete(parent, started.SessionID, CompleteSessionInput{
		LearnerID:       learnerID,
		EngagementScore: floatPtr(90),
	})
	assertValidationReason(t, err, "sessionId", "already_completed")

	reloaded, err := env.sessionRepo.GetByID(started.SessionID)
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if reloaded.EndedAt == nil || !reloaded.EndedAt.Equal(firstEndedAt) {
		t.Errorf("ended_at moved after rejected writes: %v vs %v", reloaded.EndedAt, firstEndedAt)
	}
	if reloaded.TotalQuestions != 1 {
		t.Errorf("Counters changed after rejected writes: %d questions", reloaded.TotalQuestions)
	}

	var attemptCount int
	err = env.db.QueryRow(
		"SELECT COUNT(*) FROM question_attempts WHERE question_id = ?", question.QuestionID,
	).Scan(&attemptCount)
	if err != nil {
		t.Fatalf("Failed to count attempts: %v", err)
	}
	if attemptCount != 1 {
		t.Errorf("Expected one recorded attempt, got %d", attemptCount)
	}
}

// TestHintProgressAdvancesMonotonically drives the hint progress
// compare-and-set directly. A stale update must fail without moving the
// released level backwards.
func TestHintProgressAdvancesMonotonically(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := "test_hint_progress.db"
	defer os.Remove(dbPath)

	env := newTestEnv(t, dbPath)
	defer env.db.Close()

	parent := "parent-hints"
	learnerID := env.newLearner(t, parent)
	ctx := context.Background()

	started, err := env.sessionService.Start(parent, StartSessionInput{
		LearnerID: learnerID,
		Mode:      "practice",
	})
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	question, err := env.sessionService.GenerateQuestion(ctx, parent, started.SessionID, GenerateQuestionInput{
		LearnerID:        learnerID,
		TargetDifficulty: "easy",
		MaxHints:         3,
	})
	if err != nil {
		t.Fatalf("Failed to generate question: %v", err)
	}

	progress, err := env.hintRepo.Get(question.QuestionID, learnerID)
	if err != nil {
		t.Fatalf("Failed to read hint progress: %v", err)
	}
	if progress != nil {
		t.Fatalf("Expected no hint progress before the first hint, got %+v", progress)
	}

	if err := env.hintRepo.InsertFirst(question.QuestionID, learnerID, 1); err != nil {
		t.Fatalf("Failed to insert first hint level: %v", err)
	}

	advanced, err := env.hintRepo.AdvanceFrom(question.QuestionID, learnerID, 1, 2)
	if err != nil {
		t.Fatalf("Failed to advance hint level: %v", err)
	}
	if !advanced {
		t.Fatal("Expected the 1->2 advance to apply")
	}

	// A second writer holding the stale level loses the compare-and-set
	// and the released level does not move.
	advanced, err = env.hintRepo.AdvanceFrom(question.QuestionID, learnerID, 1, 2)
	if err != nil {
		t.Fatalf("Stale advance returned an error: %v", err)
	}
	if advanced {
		t.Error("Expected the stale 1->2 advance to be rejected")
	}

	progress, err = env.hintRepo.Get(question.QuestionID, learnerID)
	if err != nil {
		t.Fatalf("Failed to read hint progress: %v", err)
	}
	if progress == nil || progress.ReleasedLevel != 2 {
		t.Fatalf("Expected released level 2, got %+v", progress)
	}

	advanced, err = env.hintRepo.AdvanceFrom(question.QuestionID, learnerID, 2, 3)
	if err != nil {
		t.Fatalf("Failed to advance hint level: %v", err)
	}
	if !advanced {
		t.Fatal("Expected the 2->3 advance to apply")
	}

	// A duplicate insert for the same question and learner hits the
	// composite primary key.
	if err := env.hintRepo.InsertFirst(question.QuestionID, learnerID, 1); err == nil {
		t.Error("Expected a duplicate insert to fail")
	}

	progress, err = env.hintRepo.Get(question.QuestionID, learnerID)
	if err != nil {
		t.Fatalf("Failed to read hint progress: %v", err)
	}
	if progress == nil || progress.ReleasedLevel != 3 {
		t.Fatalf("Expected released level 3, got %+v", progress)
	}
}

// TestMasterySnapshotSameDayOverwrite submits two attempts on the same
// topic and day and verifies a single snapshot row holding the latest
// values.
func TestMasterySnapshotSameDayOverwrite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := "test_snapshot_overwrite.db"
	defer os.Remove(dbPath)

	env := newTestEnv(t, dbPath)
	defer env.db.Close()

	parent := "parent-snapshots"
	learnerID := env.newLearner(t, parent)
	ctx := context.Background()

	started, err := env.sessionService.Start(parent, StartSessionInput{
		LearnerID:      learnerID,
		Mode:           "practice",
		FocusTopicCode: "G4-MATH-ADD-001",
	})
	if err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}

	submit := func(correct bool, hintsUsed int) *SubmitAttemptOutput {
		t.Helper()
		question, err := env.sessionService.GenerateQuestion(ctx, parent, started.SessionID, GenerateQuestionInput{
			LearnerID:        learnerID,
			TargetDifficulty: "easy",
			MaxHints:         3,
		})
		if err != nil {
			t.Fatalf("Failed to generate question: %v", err)
		}
		stored, err := env.questionRepo.GetByID(question.QuestionID)
		if err != nil {
			t.Fatalf("Failed to load stored question: %v", err)
		}
		answer := stored.CorrectAnswer
		if !correct {
			answer = "wrong"
		}
		out, err := env.attemptService.SubmitAttempt(parent, question.QuestionID, SubmitAttemptInput{
			LearnerID:       learnerID,
			SubmittedAnswer: strPtr(answer),
			HintsUsed:       hintsUsed,
		})
		if err != nil {
			t.Fatalf("Failed to submit attempt: %v", err)
		}
		return out
	}

	submit(true, 0)
	second := submit(false, 3)

	topicID := second.MasteryUpdate.TopicID

	var count int
	err = env.db.QueryRow(
		"SELECT COUNT(*) FROM mastery_snapshots WHERE learner_id = ? AND topic_id = ?",
		learnerID, topicID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count snapshots: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected one snapshot row for the day, got %d", count)
	}

	snapshot, err := env.snapshotRepo.LatestForTopic(learnerID, topicID)
	if err != nil {
		t.Fatalf("Failed to load snapshot: %v", err)
	}
	if snapshot == nil {
		t.Fatal("Expected a snapshot row")
	}
	if snapshot.AttemptsCount != second.MasteryUpdate.AttemptsCount {
		t.Errorf("Expected attempts %d, got %d", second.MasteryUpdate.AttemptsCount, snapshot.AttemptsCount)
	}
	if snapshot.AccuracyPercent != second.MasteryUpdate.AccuracyPercent {
		t.Errorf("Expected accuracy %v, got %v", second.MasteryUpdate.AccuracyPercent, snapshot.AccuracyPercent)
	}
	if snapshot.MasteryScore != second.MasteryUpdate.MasteryScore {
		t.Errorf("Expected mastery %v, got %v", second.MasteryUpdate.MasteryScore, snapshot.MasteryScore)
	}
	if snapshot.SnapshotDate.UTC().Format(dateKeyLayout) != time.Now().UTC().Format(dateKeyLayout) {
		t.Errorf("Unexpected snapshot date: %v", snapshot.SnapshotDate)
	}
}

package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"brightpath/internal/database"
	"brightpath/internal/models"
)

// AttemptRepository handles database operations for question attempts
type AttemptRepository struct {
	db database.DBTX
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db database.DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the transaction
func (r *AttemptRepository) WithTx(tx *database.Tx) *AttemptRepository {
	return &AttemptRepository{db: tx}
}

// Create persists an attempt record
func (r *AttemptRepository) Create(a *models.QuestionAttempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO question_attempts (id, question_id, learner_id, submitted_answer, is_correct,
			hints_used, response_time_seconds, feedback_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		a.ID, a.QuestionID, a.LearnerID, a.SubmittedAnswer, a.IsCorrect,
		a.HintsUsed, a.ResponseTimeSeconds, a.FeedbackText, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	return nil
}

// AttemptStats aggregates attempts: row count, correct count and the
// average hints used
type AttemptStats struct {
	Attempts     int
	Correct      int
	AvgHintsUsed float64
}

func (r *AttemptRepository) queryStats(query string, args ...interface{}) (AttemptStats, error) {
	var stats AttemptStats
	err := r.db.QueryRow(query, args...).Scan(&stats.Attempts, &stats.Correct, &stats.AvgHintsUsed)
	if err != nil {
		return AttemptStats{}, fmt.Errorf("failed to aggregate attempts: %w", err)
	}
	return stats, nil
}

// SessionStats aggregates all attempts submitted within one session
func (r *AttemptRepository) SessionStats(sessionID string) (AttemptStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(a.hints_used * 1.0), 0)
		FROM question_attempts a
		JOIN generated_questions q ON q.id = a.question_id
		WHERE q.session_id = ?
	`
	return r.queryStats(query, sessionID)
}

// TopicStats aggregates a learner's attempts across all sessions for one
// topic. Mastery snapshots are derived from these numbers.
func (r *AttemptRepository) TopicStats(learnerID, topicID string) (AttemptStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN a.is_correct THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(a.hints_used * 1.0), 0)
		FROM question_attempts a
		JOIN generated_questions q ON q.id = a.question_id
		WHERE a.learner_id = ? AND q.topic_id = ?
	`
	return r.queryStats(query, learnerID, topicID)
}

// AttemptPoint is the slice of an attempt needed for reporting
type AttemptPoint struct {
	CreatedAt time.Time
	IsCorrect bool
	HintsUsed int
}

func (r *AttemptRepository) queryPoints(query string, args ...interface{}) ([]AttemptPoint, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var points []AttemptPoint
	for rows.Next() {
		var p AttemptPoint
		if err := rows.Scan(&p.CreatedAt, &p.IsCorrect, &p.HintsUsed); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// ListSince retrieves a learner's attempts on or after the given instant,
// oldest first
func (r *AttemptRepository) ListSince(learnerID string, since time.Time) ([]AttemptPoint, error) {
	query := `
		SELECT created_at, is_correct, hints_used
		FROM question_attempts
		WHERE learner_id = ? AND created_at >= ?
		ORDER BY created_at ASC
	`
	return r.queryPoints(query, learnerID, since)
}

// ListForTopicSince retrieves a learner's attempts on one topic on or
// after the given instant, oldest first
func (r *AttemptRepository) ListForTopicSince(learnerID, topicID string, since time.Time) ([]AttemptPoint, error) {
	query := `
		SELECT a.created_at, a.is_correct, a.hints_used
		FROM question_attempts a
		JOIN generated_questions q ON q.id = a.question_id
		WHERE a.learner_id = ? AND q.topic_id = ? AND a.created_at >= ?
		ORDER BY a.created_at ASC
	`
	return r.queryPoints(query, learnerID, topicID, since)
}

package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"brightpath/internal/database"
	"brightpath/internal/models"
)

// SessionRepository handles database operations for learning sessions
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the transaction
func (r *SessionRepository) WithTx(tx *database.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

// Create creates a new open learning session
func (r *SessionRepository) Create(learnerID string, focusTopicID *string, mode models.SessionMode) (*models.LearningSession, error) {
	session := &models.LearningSession{
		ID:           uuid.NewString(),
		LearnerID:    learnerID,
		FocusTopicID: focusTopicID,
		Mode:         mode,
		StartedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO learning_sessions (id, learner_id, focus_topic_id, mode, started_at, total_questions, correct_answers, avg_hints_used)
		VALUES (?, ?, ?, ?, ?, 0, 0, 0)
	`
	_, err := r.db.Exec(query, session.ID, session.LearnerID, session.FocusTopicID, string(session.Mode), session.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetByID retrieves a session by ID, returning nil when not found
func (r *SessionRepository) GetByID(id string) (*models.LearningSession, error) {
	query := `
		SELECT id, learner_id, focus_topic_id, mode, started_at, ended_at,
		       total_questions, correct_answers, avg_hints_used, engagement_score
		FROM learning_sessions
		WHERE id = ?
	`
	session := &models.LearningSession{}
	err := r.db.QueryRow(query, id).Scan(
		&session.ID,
		&session.LearnerID,
		&session.FocusTopicID,
		&session.Mode,
		&session.StartedAt,
		&session.EndedAt,
		&session.TotalQuestions,
		&session.CorrectAnswers,
		&session.AvgHintsUsed,
		&session.EngagementScore,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// UpdateProgress writes the recomputed session counters
func (r *SessionRepository) UpdateProgress(id string, totalQuestions, correctAnswers int, avgHintsUsed float64) error {
	query := `
		UPDATE learning_sessions
		SET total_questions = ?, correct_answers = ?, avg_hints_used = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, totalQuestions, correctAnswers, avgHintsUsed, id)
	if err != nil {
		return fmt.Errorf("failed to update session progress: %w", err)
	}
	return nil
}

// Complete closes an open session. The ended_at guard keeps a concurrent
// double-complete from overwriting the original end timestamp; the caller
// checks the returned flag.
func (r *SessionRepository) Complete(id string, endedAt time.Time, engagementScore float64) (bool, error) {
	query := `
		UPDATE learning_sessions
		SET ended_at = ?, engagement_score = ?
		WHERE id = ? AND ended_at IS NULL
	`
	result, err := r.db.Exec(query, endedAt, engagementScore, id)
	if err != nil {
		return false, fmt.Errorf("failed to complete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check completed session: %w", err)
	}
	return affected == 1, nil
}

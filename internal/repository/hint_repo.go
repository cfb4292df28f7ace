package repository

import (
	"database/sql"
	"fmt"
	"time"

	"brightpath/internal/database"
	"brightpath/internal/models"
)

// HintRepository tracks the highest hint level released per learner and
// question
type HintRepository struct {
	db database.DBTX
}

// NewHintRepository creates a new hint repository
func NewHintRepository(db database.DBTX) *HintRepository {
	return &HintRepository{db: db}
}

// Get retrieves the hint progress row, returning nil when the learner has
// not requested any hint on the question yet
func (r *HintRepository) Get(questionID, learnerID string) (*models.HintProgress, error) {
	query := `
		SELECT question_id, learner_id, released_level, updated_at
		FROM hint_progress
		WHERE question_id = ? AND learner_id = ?
	`
	progress := &models.HintProgress{}
	err := r.db.QueryRow(query, questionID, learnerID).Scan(
		&progress.QuestionID,
		&progress.LearnerID,
		&progress.ReleasedLevel,
		&progress.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hint progress: %w", err)
	}

	return progress, nil
}

// InsertFirst records the first released hint level for a question and
// learner. The composite primary key makes a concurrent duplicate insert
// fail, which the caller resolves by re-reading.
func (r *HintRepository) InsertFirst(questionID, learnerID string, level int) error {
	query := `
		INSERT INTO hint_progress (question_id, learner_id, released_level, updated_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, questionID, learnerID, level, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert hint progress: %w", err)
	}
	return nil
}

// AdvanceFrom raises the released level from fromLevel to toLevel. It is
// a compare-and-set: the update only applies when the stored level still
// equals fromLevel, so two concurrent advances cannot skip a level.
func (r *HintRepository) AdvanceFrom(questionID, learnerID string, fromLevel, toLevel int) (bool, error) {
	query := `
		UPDATE hint_progress
		SET released_level = ?, updated_at = ?
		WHERE question_id = ? AND learner_id = ? AND released_level = ?
	`
	result, err := r.db.Exec(query, toLevel, time.Now().UTC(), questionID, learnerID, fromLevel)
	if err != nil {
		return false, fmt.Errorf("failed to advance hint progress: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check hint progress update: %w", err)
	}
	return affected == 1, nil
}

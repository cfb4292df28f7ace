package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"brightpath/internal/database"
	"brightpath/internal/models"
)

// LearnerRepository handles database operations for learner profiles
type LearnerRepository struct {
	db database.DBTX
}

// NewLearnerRepository creates a new learner repository
func NewLearnerRepository(db database.DBTX) *LearnerRepository {
	return &LearnerRepository{db: db}
}

// Create creates a new learner profile under the given parent
func (r *LearnerRepository) Create(parentUserID, firstName string, lastName *string, gradeLevel int) (*models.Learner, error) {
	learner := &models.Learner{
		ID:           uuid.NewString(),
		ParentUserID: parentUserID,
		FirstName:    firstName,
		LastName:     lastName,
		GradeLevel:   gradeLevel,
		CreatedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO learners (id, parent_user_id, first_name, last_name, grade_level, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, learner.ID, learner.ParentUserID, learner.FirstName, learner.LastName, learner.GradeLevel, learner.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create learner: %w", err)
	}

	return learner, nil
}

// GetByID retrieves a learner by ID, returning nil when not found
func (r *LearnerRepository) GetByID(id string) (*models.Learner, error) {
	query := `
		SELECT id, parent_user_id, first_name, last_name, grade_level, created_at
		FROM learners
		WHERE id = ?
	`
	learner := &models.Learner{}
	err := r.db.QueryRow(query, id).Scan(
		&learner.ID,
		&learner.ParentUserID,
		&learner.FirstName,
		&learner.LastName,
		&learner.GradeLevel,
		&learner.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learner: %w", err)
	}

	return learner, nil
}

// ListByParent retrieves all learners belonging to a parent, oldest first
func (r *LearnerRepository) ListByParent(parentUserID string) ([]models.Learner, error) {
	query := `
		SELECT id, parent_user_id, first_name, last_name, grade_level, created_at
		FROM learners
		WHERE parent_user_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, parentUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query learners: %w", err)
	}
	defer rows.Close()

	var learners []models.Learner
	for rows.Next() {
		var learner models.Learner
		if err := rows.Scan(
			&learner.ID,
			&learner.ParentUserID,
			&learner.FirstName,
			&learner.LastName,
			&learner.GradeLevel,
			&learner.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan learner: %w", err)
		}
		learners = append(learners, learner)
	}

	return learners, rows.Err()
}

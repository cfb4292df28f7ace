package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"brightpath/internal/database"
	"brightpath/internal/models"
)

// RecommendationRepository handles database operations for parent-facing
// study recommendations
type RecommendationRepository struct {
	db database.DBTX
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db database.DBTX) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// Create persists a recommendation. Only the digest job writes these;
// the dashboard reads them.
func (r *RecommendationRepository) Create(learnerID string, focusTopicID *string, generatedOn time.Time, text string) (*models.Recommendation, error) {
	rec := &models.Recommendation{
		ID:             uuid.NewString(),
		LearnerID:      learnerID,
		FocusTopicID:   focusTopicID,
		GeneratedOn:    generatedOn,
		Recommendation: text,
	}

	query := `
		INSERT INTO parent_recommendations (id, learner_id, focus_topic_id, generated_on, recommendation)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, rec.ID, rec.LearnerID, rec.FocusTopicID, rec.GeneratedOn, rec.Recommendation)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommendation: %w", err)
	}

	return rec, nil
}

// ListRecent retrieves a learner's newest recommendations with the focus
// topic code resolved
func (r *RecommendationRepository) ListRecent(learnerID string, limit int) ([]models.Recommendation, error) {
	query := `
		SELECT r.id, r.learner_id, r.focus_topic_id, t.topic_code, r.generated_on, r.recommendation
		FROM parent_recommendations r
		LEFT JOIN curriculum_topics t ON t.id = r.focus_topic_id
		WHERE r.learner_id = ?
		ORDER BY r.generated_on DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var recs []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		if err := rows.Scan(
			&rec.ID, &rec.LearnerID, &rec.FocusTopicID, &rec.FocusTopicCode, &rec.GeneratedOn, &rec.Recommendation,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

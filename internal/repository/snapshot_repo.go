package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"brightpath/internal/database"
	"brightpath/internal/models"
)

// SnapshotRepository handles database operations for mastery snapshots
type SnapshotRepository struct {
	db database.DBTX
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db database.DBTX) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx returns a copy of the repository that runs inside the transaction
func (r *SnapshotRepository) WithTx(tx *database.Tx) *SnapshotRepository {
	return &SnapshotRepository{db: tx}
}

// Upsert writes the per-day mastery rollup for a learner and topic,
// replacing the same calendar day's row when one exists
func (r *SnapshotRepository) Upsert(s *models.MasterySnapshot) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := r.db.GetDialect().UpsertMasterySnapshot()
	_, err := r.db.Exec(query,
		s.ID, s.LearnerID, s.TopicID, s.SnapshotDate,
		s.AttemptsCount, s.AccuracyPercent, s.HintDependencyPercent, s.MasteryScore, string(s.Proficiency),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mastery snapshot: %w", err)
	}

	return nil
}

// TopicSnapshot joins a snapshot with its topic's code and title
type TopicSnapshot struct {
	models.MasterySnapshot
	TopicCode  string
	TopicTitle string
}

// ListByLearner retrieves all of a learner's snapshots joined with topic
// metadata, ordered by topic then newest snapshot first
func (r *SnapshotRepository) ListByLearner(learnerID string) ([]TopicSnapshot, error) {
	query := `
		SELECT s.id, s.learner_id, s.topic_id, s.snapshot_date, s.attempts_count,
		       s.accuracy_percent, s.hint_dependency_percent, s.mastery_score, s.proficiency,
		       t.topic_code, t.topic_title
		FROM mastery_snapshots s
		JOIN curriculum_topics t ON t.id = s.topic_id
		WHERE s.learner_id = ?
		ORDER BY s.topic_id ASC, s.snapshot_date DESC
	`
	rows, err := r.db.Query(query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mastery snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []TopicSnapshot
	for rows.Next() {
		var s TopicSnapshot
		if err := rows.Scan(
			&s.ID, &s.LearnerID, &s.TopicID, &s.SnapshotDate, &s.AttemptsCount,
			&s.AccuracyPercent, &s.HintDependencyPercent, &s.MasteryScore, &s.Proficiency,
			&s.TopicCode, &s.TopicTitle,
		); err != nil {
			return nil, fmt.Errorf("failed to scan mastery snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// LatestForTopic retrieves the newest snapshot for a learner and topic,
// returning nil when the learner has no history on the topic
func (r *SnapshotRepository) LatestForTopic(learnerID, topicID string) (*models.MasterySnapshot, error) {
	query := `
		SELECT id, learner_id, topic_id, snapshot_date, attempts_count,
		       accuracy_percent, hint_dependency_percent, mastery_score, proficiency
		FROM mastery_snapshots
		WHERE learner_id = ? AND topic_id = ?
		ORDER BY snapshot_date DESC
		LIMIT 1
	`
	s := &models.MasterySnapshot{}
	err := r.db.QueryRow(query, learnerID, topicID).Scan(
		&s.ID, &s.LearnerID, &s.TopicID, &s.SnapshotDate, &s.AttemptsCount,
		&s.AccuracyPercent, &s.HintDependencyPercent, &s.MasteryScore, &s.Proficiency,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest mastery snapshot: %w", err)
	}

	return s, nil
}

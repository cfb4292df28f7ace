package repository

import (
	"database/sql"
	"fmt"

	"brightpath/internal/database"
	"brightpath/internal/models"
)

// TopicRepository handles database operations for curriculum topics
type TopicRepository struct {
	db database.DBTX
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db database.DBTX) *TopicRepository {
	return &TopicRepository{db: db}
}

const topicColumns = "id, topic_code, topic_title, strand, sub_strand, grade_level, is_active, created_at"

func scanTopic(row interface{ Scan(...interface{}) error }) (*models.Topic, error) {
	topic := &models.Topic{}
	err := row.Scan(
		&topic.ID,
		&topic.TopicCode,
		&topic.TopicTitle,
		&topic.Strand,
		&topic.SubStrand,
		&topic.GradeLevel,
		&topic.IsActive,
		&topic.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan topic: %w", err)
	}
	return topic, nil
}

// GetByID retrieves a topic by ID, returning nil when not found
func (r *TopicRepository) GetByID(id string) (*models.Topic, error) {
	query := "SELECT " + topicColumns + " FROM curriculum_topics WHERE id = ?"
	return scanTopic(r.db.QueryRow(query, id))
}

// GetByCode retrieves a topic by its unique topic code
func (r *TopicRepository) GetByCode(code string) (*models.Topic, error) {
	query := "SELECT " + topicColumns + " FROM curriculum_topics WHERE topic_code = ?"
	return scanTopic(r.db.QueryRow(query, code))
}

// GetActiveByCodeForGrade retrieves an active topic by code restricted to
// one grade level. Used to validate a session's focus topic.
func (r *TopicRepository) GetActiveByCodeForGrade(code string, gradeLevel int) (*models.Topic, error) {
	query := "SELECT " + topicColumns + ` FROM curriculum_topics
		WHERE topic_code = ? AND grade_level = ? AND is_active = ?`
	return scanTopic(r.db.QueryRow(query, code, gradeLevel, true))
}

// FirstActiveForGrade retrieves the oldest active topic for a grade level.
// Sessions without a focus topic generate questions against it.
func (r *TopicRepository) FirstActiveForGrade(gradeLevel int) (*models.Topic, error) {
	query := "SELECT " + topicColumns + ` FROM curriculum_topics
		WHERE grade_level = ? AND is_active = ?
		ORDER BY created_at ASC
		LIMIT 1`
	return scanTopic(r.db.QueryRow(query, gradeLevel, true))
}

// ListActiveForGrade retrieves all active topics for a grade level
func (r *TopicRepository) ListActiveForGrade(gradeLevel int) ([]models.Topic, error) {
	query := "SELECT " + topicColumns + ` FROM curriculum_topics
		WHERE grade_level = ? AND is_active = ?
		ORDER BY created_at ASC`
	rows, err := r.db.Query(query, gradeLevel, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, *topic)
	}

	return topics, rows.Err()
}

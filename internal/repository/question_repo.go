package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"brightpath/internal/database"
	"brightpath/internal/models"
)

// QuestionRepository handles database operations for generated questions
type QuestionRepository struct {
	db database.DBTX
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db database.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create persists a generated question. Options and the hint ladder are
// stored as JSON text so the row stays portable across dialects.
func (r *QuestionRepository) Create(q *models.GeneratedQuestion) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	var optionsJSON sql.NullString
	if q.Options != nil {
		encoded, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options: %w", err)
		}
		optionsJSON = sql.NullString{String: string(encoded), Valid: true}
	}

	hintsJSON, err := json.Marshal(q.HintLadder)
	if err != nil {
		return fmt.Errorf("failed to encode hint ladder: %w", err)
	}

	query := `
		INSERT INTO generated_questions (id, session_id, learner_id, topic_id, difficulty, question_text,
			answer_format, options_json, correct_answer, hint_ladder_json, explanation,
			provider, model, gen_attempts, seed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		q.ID, q.SessionID, q.LearnerID, q.TopicID, string(q.Difficulty), q.QuestionText,
		string(q.AnswerFormat), optionsJSON, q.CorrectAnswer, string(hintsJSON), q.Explanation,
		q.Provider, q.Model, q.GenAttempts, q.Seed, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	return nil
}

// GetByID retrieves a question by ID, returning nil when not found
func (r *QuestionRepository) GetByID(id string) (*models.GeneratedQuestion, error) {
	query := `
		SELECT id, session_id, learner_id, topic_id, difficulty, question_text,
		       answer_format, options_json, correct_answer, hint_ladder_json, explanation,
		       provider, model, gen_attempts, seed, created_at
		FROM generated_questions
		WHERE id = ?
	`
	q := &models.GeneratedQuestion{}
	var optionsJSON sql.NullString
	var hintsJSON string

	err := r.db.QueryRow(query, id).Scan(
		&q.ID, &q.SessionID, &q.LearnerID, &q.TopicID, &q.Difficulty, &q.QuestionText,
		&q.AnswerFormat, &optionsJSON, &q.CorrectAnswer, &hintsJSON, &q.Explanation,
		&q.Provider, &q.Model, &q.GenAttempts, &q.Seed, &q.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if optionsJSON.Valid {
		if err := json.Unmarshal([]byte(optionsJSON.String), &q.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(hintsJSON), &q.HintLadder); err != nil {
		return nil, fmt.Errorf("failed to decode hint ladder: %w", err)
	}

	return q, nil
}

// TextsBySession retrieves the question texts already generated in a
// session, for duplicate detection
func (r *QuestionRepository) TextsBySession(sessionID string) ([]string, error) {
	query := "SELECT question_text FROM generated_questions WHERE session_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query question texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan question text: %w", err)
		}
		texts = append(texts, text)
	}

	return texts, rows.Err()
}

// CountBySession counts the questions generated in a session
func (r *QuestionRepository) CountBySession(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM generated_questions WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

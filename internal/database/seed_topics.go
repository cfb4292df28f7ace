package database

import (
	"fmt"
	"log"

	"github.com/google/uuid"
)

type seedTopic struct {
	code      string
	title     string
	strand    string
	subStrand string
	grade     int
}

// Starter curriculum used on an empty database. Real deployments load
// their curriculum through ops tooling; this keeps dev setups working.
var defaultTopics = []seedTopic{
	{"G3-MATH-ADD-001", "Addition within 1000", "Number", "Addition", 3},
	{"G3-MATH-SUB-001", "Subtraction within 1000", "Number", "Subtraction", 3},
	{"G3-MATH-MUL-001", "Multiplication Facts to 10", "Number", "Multiplication", 3},
	{"G4-MATH-ADD-001", "Multi-digit Addition", "Number", "Addition", 4},
	{"G4-MATH-MUL-001", "Multi-digit Multiplication", "Number", "Multiplication", 4},
	{"G4-MATH-FRC-001", "Equivalent Fractions", "Number", "Fractions", 4},
	{"G4-MATH-GEO-001", "Angles and Lines", "Geometry", "Angle Measurement", 4},
	{"G5-MATH-FRC-001", "Adding and Subtracting Fractions", "Number", "Fractions", 5},
	{"G5-MATH-DEC-001", "Decimal Place Value", "Number", "Decimals", 5},
	{"G5-MATH-VOL-001", "Volume of Rectangular Prisms", "Measurement", "Volume", 5},
}

// SeedDefaultTopics populates the curriculum with a starter topic set
// when the table is empty
func (db *DB) SeedDefaultTopics() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM curriculum_topics").Scan(&count); err != nil {
		return fmt.Errorf("failed to check topic count: %w", err)
	}
	if count > 0 {
		log.Printf("Curriculum already populated with %d topics", count)
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, topic := range defaultTopics {
		_, err := tx.Exec(`
			INSERT INTO curriculum_topics (id, topic_code, topic_title, strand, sub_strand, grade_level, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), topic.code, topic.title, topic.strand, topic.subStrand, topic.grade, true)
		if err != nil {
			return fmt.Errorf("failed to seed topic %s: %w", topic.code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit topic seed: %w", err)
	}

	log.Printf("Seeded %d curriculum topics", len(defaultTopics))
	return nil
}

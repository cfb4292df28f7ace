package models

import "time"

// Proficiency is the band derived from a mastery score
type Proficiency string

const (
	ProficiencyNeedsSupport Proficiency = "NEEDS_SUPPORT"
	ProficiencyDeveloping   Proficiency = "DEVELOPING"
	ProficiencyProficient   Proficiency = "PROFICIENT"
	ProficiencyAdvanced     Proficiency = "ADVANCED"
)

// Label returns the lowercase API representation of the band
func (p Proficiency) Label() string {
	switch p {
	case ProficiencyNeedsSupport:
		return "needs_support"
	case ProficiencyDeveloping:
		return "developing"
	case ProficiencyProficient:
		return "proficient"
	case ProficiencyAdvanced:
		return "advanced"
	}
	return string(p)
}

// MasterySnapshot is the per-day rollup of a learner's standing on one
// topic. One row per (learner, topic, calendar day); a later attempt on
// the same day overwrites the row.
type MasterySnapshot struct {
	ID                    string
	LearnerID             string
	TopicID               string
	SnapshotDate          time.Time // UTC midnight
	AttemptsCount         int
	AccuracyPercent       float64
	HintDependencyPercent float64
	MasteryScore          float64
	Proficiency           Proficiency
}

// Recommendation is a parent-facing study suggestion. The write path is
// owned by a separate process; this service only reads them.
type Recommendation struct {
	ID             string
	LearnerID      string
	FocusTopicID   *string
	FocusTopicCode *string
	GeneratedOn    time.Time
	Recommendation string
}

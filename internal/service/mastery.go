package service

import (
	"math"
	"time"

	"brightpath/internal/models"
	"brightpath/internal/repository"
)

// maxHintLevels is the depth of every hint ladder. Hint dependency is
// the average hints used expressed as a share of this depth.
const maxHintLevels = 3

// round2 rounds to two decimal places, matching how percentages are
// stored and reported everywhere in the API.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// MasteryResult is the outcome of scoring a learner's standing on a topic
type MasteryResult struct {
	AttemptsCount         int
	AccuracyPercent       float64
	HintDependencyPercent float64
	MasteryScore          float64
	Proficiency           models.Proficiency
}

// ComputeMastery derives the mastery score from a learner's aggregate
// attempt stats on one topic. Accuracy is penalized by hint dependency
// at a 0.35 weight and floored at zero.
func ComputeMastery(stats repository.AttemptStats) MasteryResult {
	accuracy := 0.0
	if stats.Attempts > 0 {
		accuracy = round2(float64(stats.Correct) / float64(stats.Attempts) * 100)
	}
	hintDependency := round2(stats.AvgHintsUsed / maxHintLevels * 100)
	mastery := round2(math.Max(0, accuracy-hintDependency*0.35))

	return MasteryResult{
		AttemptsCount:         stats.Attempts,
		AccuracyPercent:       accuracy,
		HintDependencyPercent: hintDependency,
		MasteryScore:          mastery,
		Proficiency:           ToProficiency(mastery),
	}
}

// ToProficiency maps a mastery score to its band
func ToProficiency(masteryScore float64) models.Proficiency {
	switch {
	case masteryScore < 40:
		return models.ProficiencyNeedsSupport
	case masteryScore < 70:
		return models.ProficiencyDeveloping
	case masteryScore < 85:
		return models.ProficiencyProficient
	default:
		return models.ProficiencyAdvanced
	}
}

// NextDifficulty recommends the difficulty for the learner's next
// question from their current topic standing
func NextDifficulty(accuracyPercent, hintDependencyPercent float64) models.Difficulty {
	if accuracyPercent >= 80 && hintDependencyPercent < 20 {
		return models.DifficultyHard
	}
	if accuracyPercent >= 60 {
		return models.DifficultyMedium
	}
	return models.DifficultyEasy
}

// startOfDayUTC truncates an instant to UTC midnight
func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package service

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"brightpath/internal/apperrors"
	"brightpath/internal/models"
	"brightpath/internal/repository"
)

const dateKeyLayout = "2006-01-02"

var topicCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// ReportService aggregates attempt history and mastery snapshots into
// parent-facing reports.
type ReportService struct {
	learnerRepo        *repository.LearnerRepository
	topicRepo          *repository.TopicRepository
	attemptRepo        *repository.AttemptRepository
	snapshotRepo       *repository.SnapshotRepository
	recommendationRepo *repository.RecommendationRepository
}

// NewReportService creates a new report service
func NewReportService(
	learnerRepo *repository.LearnerRepository,
	topicRepo *repository.TopicRepository,
	attemptRepo *repository.AttemptRepository,
	snapshotRepo *repository.SnapshotRepository,
	recommendationRepo *repository.RecommendationRepository,
) *ReportService {
	return &ReportService{
		learnerRepo:        learnerRepo,
		topicRepo:          topicRepo,
		attemptRepo:        attemptRepo,
		snapshotRepo:       snapshotRepo,
		recommendationRepo: recommendationRepo,
	}
}

// ParseDashboardDays parses the days query parameter for the dashboard,
// defaulting to 7 and accepting 1 through 90.
func ParseDashboardDays(raw string) (int, error) {
	return parseDays(raw, 7, 90)
}

// ParseDrilldownDays parses the days query parameter for the topic
// drilldown, defaulting to 30 and accepting 1 through 180.
func ParseDrilldownDays(raw string) (int, error) {
	return parseDays(raw, 30, 180)
}

func parseDays(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation("Invalid days query",
			apperrors.Detail{Field: "days", Reason: "must_be_integer"})
	}
	if parsed < 1 || parsed > max {
		return 0, apperrors.Validation("Invalid days query",
			apperrors.Detail{Field: "days", Reason: "out_of_range"})
	}
	return parsed, nil
}

// LearnerSummary is the list entry for a parent's learner
type LearnerSummary struct {
	LearnerID  string `json:"learnerId"`
	FirstName  string `json:"firstName"`
	GradeLevel int    `json:"gradeLevel"`
}

// ListLearnersOutput is the response for listing a parent's learners
type ListLearnersOutput struct {
	Learners []LearnerSummary `json:"learners"`
}

// ListLearners returns the parent's learners ordered by creation time
func (s *ReportService) ListLearners(parentUserID string) (*ListLearnersOutput, error) {
	learners, err := s.learnerRepo.ListByParent(parentUserID)
	if err != nil {
		return nil, apperrors.From(err)
	}

	out := &ListLearnersOutput{Learners: make([]LearnerSummary, 0, len(learners))}
	for _, l := range learners {
		out.Learners = append(out.Learners, LearnerSummary{
			LearnerID:  l.ID,
			FirstName:  l.FirstName,
			GradeLevel: l.GradeLevel,
		})
	}
	return out, nil
}

// TopicOption is an active topic a learner's sessions can focus on
type TopicOption struct {
	TopicCode  string `json:"topicCode"`
	TopicTitle string `json:"topicTitle"`
	Strand     string `json:"strand"`
	SubStrand  string `json:"subStrand"`
}

// ListTopicsOutput wraps the focusable topics for a learner
type ListTopicsOutput struct {
	Topics []TopicOption `json:"topics"`
}

// ListTopics returns the active topics for the learner's grade level.
// These are the codes accepted as focusTopicCode when starting a session.
func (s *ReportService) ListTopics(parentUserID, learnerID string) (*ListTopicsOutput, error) {
	learner, err := s.ownedLearner(parentUserID, learnerID)
	if err != nil {
		return nil, err
	}

	topics, err := s.topicRepo.ListActiveForGrade(learner.GradeLevel)
	if err != nil {
		return nil, apperrors.From(err)
	}

	out := &ListTopicsOutput{Topics: make([]TopicOption, 0, len(topics))}
	for _, t := range topics {
		out.Topics = append(out.Topics, TopicOption{
			TopicCode:  t.TopicCode,
			TopicTitle: t.TopicTitle,
			Strand:     t.Strand,
			SubStrand:  t.SubStrand,
		})
	}
	return out, nil
}

// LearnerRef identifies the learner a report describes
type LearnerRef struct {
	LearnerID  string `json:"learnerId"`
	Name       string `json:"name"`
	GradeLevel int    `json:"gradeLevel"`
}

// Overview summarizes a learner's activity within the report window
type Overview struct {
	Attempts        int     `json:"attempts"`
	AccuracyPercent float64 `json:"accuracyPercent"`
	AvgHintsUsed    float64 `json:"avgHintsUsed"`
	StreakDays      int     `json:"streakDays"`
}

// TrendDay is one day of attempt activity. Days without attempts are
// omitted from the trend.
type TrendDay struct {
	Date            string  `json:"date"`
	Attempts        int     `json:"attempts"`
	AccuracyPercent float64 `json:"accuracyPercent"`
	AvgHintsUsed    float64 `json:"avgHintsUsed"`
}

// TopicMastery is the latest mastery standing on one topic
type TopicMastery struct {
	TopicID               string  `json:"topicId"`
	TopicCode             string  `json:"topicCode"`
	TopicTitle            string  `json:"topicTitle"`
	MasteryScore          float64 `json:"masteryScore"`
	Proficiency           string  `json:"proficiency"`
	AccuracyPercent       float64 `json:"accuracyPercent"`
	HintDependencyPercent float64 `json:"hintDependencyPercent"`
}

// RecommendationView is a parent-facing study recommendation
type RecommendationView struct {
	GeneratedOn    string  `json:"generatedOn"`
	FocusTopicCode *string `json:"focusTopicCode"`
	Text           string  `json:"text"`
}

// DashboardOutput is the response for the parent dashboard
type DashboardOutput struct {
	Learner         LearnerRef           `json:"learner"`
	Overview        Overview             `json:"overview"`
	DailyTrend      []TrendDay           `json:"dailyTrend"`
	TopicMastery    []TopicMastery       `json:"topicMastery"`
	Recommendations []RecommendationView `json:"recommendations"`
}

// Dashboard aggregates a learner's recent attempts, latest per-topic
// mastery, and recommendations for the parent view
func (s *ReportService) Dashboard(parentUserID, learnerID string, days int) (*DashboardOutput, error) {
	learner, err := s.ownedLearner(parentUserID, learnerID)
	if err != nil {
		return nil, err
	}

	since := windowStart(time.Now(), days)
	attempts, err := s.attemptRepo.ListSince(learnerID, since)
	if err != nil {
		return nil, apperrors.From(err)
	}

	attemptsCount := len(attempts)
	correct := 0
	hintsTotal := 0
	for _, a := range attempts {
		if a.IsCorrect {
			correct++
		}
		hintsTotal += a.HintsUsed
	}
	accuracy := 0.0
	avgHints := 0.0
	if attemptsCount > 0 {
		accuracy = round2(float64(correct) / float64(attemptsCount) * 100)
		avgHints = round2(float64(hintsTotal) / float64(attemptsCount))
	}

	snapshots, err := s.snapshotRepo.ListByLearner(learnerID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	topicMastery := latestPerTopic(snapshots)

	recommendations, err := s.recommendationRepo.ListRecent(learnerID, 5)
	if err != nil {
		return nil, apperrors.From(err)
	}
	recViews := make([]RecommendationView, 0, len(recommendations))
	for _, rec := range recommendations {
		recViews = append(recViews, RecommendationView{
			GeneratedOn:    rec.GeneratedOn.UTC().Format(dateKeyLayout),
			FocusTopicCode: rec.FocusTopicCode,
			Text:           rec.Recommendation,
		})
	}

	return &DashboardOutput{
		Learner: LearnerRef{
			LearnerID:  learner.ID,
			Name:       learner.FullName(),
			GradeLevel: learner.GradeLevel,
		},
		Overview: Overview{
			Attempts:        attemptsCount,
			AccuracyPercent: accuracy,
			AvgHintsUsed:    avgHints,
			StreakDays:      computeStreakDays(attempts, time.Now()),
		},
		DailyTrend:      buildDailyTrend(attempts),
		TopicMastery:    topicMastery,
		Recommendations: recViews,
	}, nil
}

// DrilldownDay is one day of attempt activity on a single topic
type DrilldownDay struct {
	Date            string  `json:"date"`
	Attempts        int     `json:"attempts"`
	CorrectAttempts int     `json:"correctAttempts"`
	AvgHintsUsed    float64 `json:"avgHintsUsed"`
}

// LatestMastery is the most recent snapshot standing on one topic
type LatestMastery struct {
	MasteryScore float64 `json:"masteryScore"`
	Proficiency  string  `json:"proficiency"`
}

// DrilldownOutput is the response for the per-topic drilldown
type DrilldownOutput struct {
	TopicCode      string         `json:"topicCode"`
	TopicTitle     string         `json:"topicTitle"`
	AttemptHistory []DrilldownDay `json:"attemptHistory"`
	LatestMastery  LatestMastery  `json:"latestMastery"`
}

// TopicDrilldown reports a learner's per-day history and latest mastery
// on one topic
func (s *ReportService) TopicDrilldown(parentUserID, learnerID, topicCode string, days int) (*DrilldownOutput, error) {
	if !topicCodeRe.MatchString(topicCode) {
		return nil, apperrors.Validation("Invalid topic code",
			apperrors.Detail{Field: "topicCode", Reason: "invalid_format"})
	}

	if _, err := s.ownedLearner(parentUserID, learnerID); err != nil {
		return nil, err
	}

	topic, err := s.topicRepo.GetByCode(topicCode)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if topic == nil {
		return nil, apperrors.NotFound("Topic not found")
	}

	since := windowStart(time.Now(), days)
	attempts, err := s.attemptRepo.ListForTopicSince(learnerID, topic.ID, since)
	if err != nil {
		return nil, apperrors.From(err)
	}

	history := make([]DrilldownDay, 0)
	for _, b := range bucketByDay(attempts) {
		history = append(history, DrilldownDay{
			Date:            b.date,
			Attempts:        b.attempts,
			CorrectAttempts: b.correct,
			AvgHintsUsed:    round2(float64(b.hintsTotal) / float64(b.attempts)),
		})
	}

	latest, err := s.snapshotRepo.LatestForTopic(learnerID, topic.ID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	latestMastery := LatestMastery{MasteryScore: 0, Proficiency: models.ProficiencyDeveloping.Label()}
	if latest != nil {
		latestMastery = LatestMastery{
			MasteryScore: round2(latest.MasteryScore),
			Proficiency:  latest.Proficiency.Label(),
		}
	}

	return &DrilldownOutput{
		TopicCode:      topic.TopicCode,
		TopicTitle:     topic.TopicTitle,
		AttemptHistory: history,
		LatestMastery:  latestMastery,
	}, nil
}

// ownedLearner fetches a learner and verifies parent ownership
func (s *ReportService) ownedLearner(parentUserID, learnerID string) (*models.Learner, error) {
	if uuid.Validate(learnerID) != nil {
		return nil, apperrors.Validation("Invalid learner identifier",
			apperrors.Detail{Field: "learnerId", Reason: "invalid_uuid"})
	}
	learner, err := s.learnerRepo.GetByID(learnerID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if learner == nil {
		return nil, apperrors.NotFound("Learner not found")
	}
	if learner.ParentUserID != parentUserID {
		return nil, apperrors.Forbidden("Learner does not belong to authenticated parent")
	}
	return learner, nil
}

// windowStart returns the UTC midnight that opens a report window of
// the given length ending today
func windowStart(now time.Time, days int) time.Time {
	return startOfDayUTC(now).AddDate(0, 0, -(days - 1))
}

type dayBucket struct {
	date       string
	attempts   int
	correct    int
	hintsTotal int
}

// bucketByDay groups attempts by UTC day in ascending order, skipping
// days with no attempts
func bucketByDay(attempts []repository.AttemptPoint) []dayBucket {
	byDay := make(map[string]*dayBucket)
	var keys []string
	for _, a := range attempts {
		key := a.CreatedAt.UTC().Format(dateKeyLayout)
		b, ok := byDay[key]
		if !ok {
			b = &dayBucket{date: key}
			byDay[key] = b
			keys = append(keys, key)
		}
		b.attempts++
		if a.IsCorrect {
			b.correct++
		}
		b.hintsTotal += a.HintsUsed
	}
	sort.Strings(keys)

	buckets := make([]dayBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, *byDay[key])
	}
	return buckets
}

// buildDailyTrend renders day buckets for the dashboard trend
func buildDailyTrend(attempts []repository.AttemptPoint) []TrendDay {
	buckets := bucketByDay(attempts)
	trend := make([]TrendDay, 0, len(buckets))
	for _, b := range buckets {
		trend = append(trend, TrendDay{
			Date:            b.date,
			Attempts:        b.attempts,
			AccuracyPercent: round2(float64(b.correct) / float64(b.attempts) * 100),
			AvgHintsUsed:    round2(float64(b.hintsTotal) / float64(b.attempts)),
		})
	}
	return trend
}

// latestPerTopic keeps the most recent snapshot per topic. Input rows
// are ordered topic asc, snapshot date desc, so the first row seen for
// a topic is its latest.
func latestPerTopic(snapshots []repository.TopicSnapshot) []TopicMastery {
	seen := make(map[string]bool)
	out := make([]TopicMastery, 0, len(snapshots))
	for _, snap := range snapshots {
		if seen[snap.TopicID] {
			continue
		}
		seen[snap.TopicID] = true
		out = append(out, TopicMastery{
			TopicID:               snap.TopicID,
			TopicCode:             snap.TopicCode,
			TopicTitle:            snap.TopicTitle,
			MasteryScore:          round2(snap.MasteryScore),
			Proficiency:           snap.Proficiency.Label(),
			AccuracyPercent:       round2(snap.AccuracyPercent),
			HintDependencyPercent: round2(snap.HintDependencyPercent),
		})
	}
	return out
}

// WeakestTopic picks the topic with the lowest mastery score from the
// latest per-topic standings, first encountered winning ties. Returns
// nil when the learner has no snapshots yet.
func WeakestTopic(topics []TopicMastery) *TopicMastery {
	var weakest *TopicMastery
	for i := range topics {
		if weakest == nil || topics[i].MasteryScore < weakest.MasteryScore {
			weakest = &topics[i]
		}
	}
	return weakest
}

// computeStreakDays counts consecutive days with at least one attempt,
// walking back from today. A streak may also be anchored at yesterday,
// so an early-morning check does not show zero before today's practice.
func computeStreakDays(attempts []repository.AttemptPoint, now time.Time) int {
	seen := make(map[string]bool)
	var days []string
	for _, a := range attempts {
		key := a.CreatedAt.UTC().Format(dateKeyLayout)
		if !seen[key] {
			seen[key] = true
			days = append(days, key)
		}
	}
	if len(days) == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	streak := 0
	cursor := startOfDayUTC(now)
	for _, key := range days {
		if key != cursor.Format(dateKeyLayout) {
			if streak != 0 {
				break
			}
			yesterday := cursor.AddDate(0, 0, -1)
			if key != yesterday.Format(dateKeyLayout) {
				break
			}
			cursor = yesterday
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

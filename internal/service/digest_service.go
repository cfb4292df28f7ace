package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"brightpath/internal/apperrors"
	"brightpath/internal/models"
	"brightpath/internal/repository"
)

// DigestService produces the weekly parent digest: it refreshes each
// learner's study recommendation from their weakest topic and emails
// the dashboard summary.
type DigestService struct {
	learnerRepo        *repository.LearnerRepository
	snapshotRepo       *repository.SnapshotRepository
	recommendationRepo *repository.RecommendationRepository
	reportService      *ReportService
	emailService       *EmailService
}

// NewDigestService creates a new digest service
func NewDigestService(
	learnerRepo *repository.LearnerRepository,
	snapshotRepo *repository.SnapshotRepository,
	recommendationRepo *repository.RecommendationRepository,
	reportService *ReportService,
	emailService *EmailService,
) *DigestService {
	return &DigestService{
		learnerRepo:        learnerRepo,
		snapshotRepo:       snapshotRepo,
		recommendationRepo: recommendationRepo,
		reportService:      reportService,
		emailService:       emailService,
	}
}

// RefreshRecommendation records a study recommendation targeting the
// learner's weakest topic. No-op when the learner has no mastery
// snapshots yet.
func (s *DigestService) RefreshRecommendation(learnerID string) (*models.Recommendation, error) {
	snapshots, err := s.snapshotRepo.ListByLearner(learnerID)
	if err != nil {
		return nil, apperrors.From(err)
	}

	weakest := WeakestTopic(latestPerTopic(snapshots))
	if weakest == nil {
		return nil, nil
	}

	text := recommendationText(*weakest)
	rec, err := s.recommendationRepo.Create(learnerID, &weakest.TopicID, time.Now().UTC(), text)
	if err != nil {
		return nil, apperrors.From(err)
	}
	return rec, nil
}

// recommendationText phrases the weakest-topic suggestion for parents
func recommendationText(topic TopicMastery) string {
	switch topic.Proficiency {
	case models.ProficiencyNeedsSupport.Label():
		return fmt.Sprintf("%s needs extra support. Try a few easy practice sessions together this week.", topic.TopicTitle)
	case models.ProficiencyDeveloping.Label():
		return fmt.Sprintf("Keep practicing %s. Short daily sessions will build confidence.", topic.TopicTitle)
	case models.ProficiencyProficient.Label():
		return fmt.Sprintf("%s is nearly mastered. A couple of harder questions will close the gap.", topic.TopicTitle)
	default:
		return fmt.Sprintf("%s is going well. Revisit it occasionally to keep it sharp.", topic.TopicTitle)
	}
}

// RunForParent refreshes recommendations for every learner of a parent
// and emails the digest to the given address. Failures for one learner
// are logged and do not stop the rest.
func (s *DigestService) RunForParent(ctx context.Context, parentUserID, toEmail string) error {
	learners, err := s.learnerRepo.ListByParent(parentUserID)
	if err != nil {
		return fmt.Errorf("failed to list learners: %w", err)
	}

	for _, learner := range learners {
		if _, err := s.RefreshRecommendation(learner.ID); err != nil {
			log.Printf("Failed to refresh recommendation for learner %s: %v", learner.ID, err)
			continue
		}

		dashboard, err := s.reportService.Dashboard(parentUserID, learner.ID, 7)
		if err != nil {
			log.Printf("Failed to build dashboard for learner %s: %v", learner.ID, err)
			continue
		}

		if toEmail == "" {
			continue
		}
		if err := s.emailService.SendProgressDigest(ctx, toEmail, dashboard); err != nil {
			log.Printf("Failed to send digest for learner %s: %v", learner.ID, err)
		}
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"brightpath/internal/config"
	"brightpath/internal/database"
	"brightpath/internal/repository"
	"brightpath/internal/service"
)

func main() {
	parentID := flag.String("parent", "", "Parent user ID to run the digest for (required)")
	toEmail := flag.String("to", "", "Recipient email address (omit to refresh recommendations without sending)")
	flag.Parse()

	if *parentID == "" {
		fmt.Println("Error: -parent flag is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.Load()

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	learnerRepo := repository.NewLearnerRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	recommendationRepo := repository.NewRecommendationRepository(db)

	reportService := service.NewReportService(learnerRepo, topicRepo, attemptRepo, snapshotRepo, recommendationRepo)

	emailService, err := service.NewEmailService(cfg.Email.AWSRegion, cfg.Email.FromEmail, cfg.Email.FromName, cfg.Email.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if *toEmail != "" && !emailService.IsEnabled() {
		log.Fatal("Cannot send digest: SES_FROM_EMAIL is not configured")
	}

	digestService := service.NewDigestService(learnerRepo, snapshotRepo, recommendationRepo, reportService, emailService)

	if err := digestService.RunForParent(context.Background(), *parentID, *toEmail); err != nil {
		log.Fatalf("Digest run failed: %v", err)
	}

	log.Println("Digest run completed")
}

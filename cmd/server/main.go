package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"brightpath/internal/config"
	"brightpath/internal/database"
	"brightpath/internal/generator"
	"brightpath/internal/handlers"
	"brightpath/internal/repository"
	"brightpath/internal/service"
)

func main() {
	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Seed starter curriculum on an empty database
	if err := db.SeedDefaultTopics(); err != nil {
		log.Printf("Warning: Failed to seed curriculum topics: %v", err)
	}

	// Initialize the question generator. Fails fast on a configured
	// provider with a missing credential.
	gen, err := generator.New(context.Background(), generator.ConfigFromApp(cfg.AI))
	if err != nil {
		log.Fatalf("Failed to initialize question generator: %v", err)
	}

	// Initialize repositories
	learnerRepo := repository.NewLearnerRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	hintRepo := repository.NewHintRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	recommendationRepo := repository.NewRecommendationRepository(db)

	// Initialize services
	sessionService := service.NewSessionService(learnerRepo, topicRepo, sessionRepo, questionRepo, gen)
	attemptService := service.NewAttemptService(db, learnerRepo, topicRepo, sessionRepo, questionRepo, hintRepo, attemptRepo, snapshotRepo)
	learnerService := service.NewLearnerService(learnerRepo)
	reportService := service.NewReportService(learnerRepo, topicRepo, attemptRepo, snapshotRepo, recommendationRepo)

	// Initialize handlers
	middleware := handlers.NewMiddleware(cfg.JWTSecret)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	questionHandler := handlers.NewQuestionHandler(attemptService)
	parentHandler := handlers.NewParentHandler(learnerService, reportService)

	mux := http.NewServeMux()

	// Session routes
	mux.HandleFunc("POST /api/v1/sessions", middleware.RequireParent(sessionHandler.Start))
	mux.HandleFunc("POST /api/v1/sessions/{sessionId}/questions", middleware.RequireParent(sessionHandler.GenerateQuestion))
	mux.HandleFunc("POST /api/v1/sessions/{sessionId}/complete", middleware.RequireParent(sessionHandler.Complete))

	// Question routes
	mux.HandleFunc("POST /api/v1/questions/{questionId}/hints", middleware.RequireParent(questionHandler.RequestHint))
	mux.HandleFunc("POST /api/v1/questions/{questionId}/attempts", middleware.RequireParent(questionHandler.SubmitAttempt))

	// Parent reporting routes
	mux.HandleFunc("POST /api/v1/parent/children", middleware.RequireParent(parentHandler.CreateChild))
	mux.HandleFunc("GET /api/v1/parent/children", middleware.RequireParent(parentHandler.ListChildren))
	mux.HandleFunc("GET /api/v1/parent/children/{childId}/topics", middleware.RequireParent(parentHandler.ListTopics))
	mux.HandleFunc("GET /api/v1/parent/children/{childId}/dashboard", middleware.RequireParent(parentHandler.Dashboard))
	mux.HandleFunc("GET /api/v1/parent/children/{childId}/topics/{topicCode}", middleware.RequireParent(parentHandler.TopicDrilldown))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Devam42/Answerly-chatbot/internal/aggregate"
	"github.com/Devam42/Answerly-chatbot/internal/audio"
	"github.com/Devam42/Answerly-chatbot/internal/config"
	"github.com/Devam42/Answerly-chatbot/internal/extract"
	"github.com/Devam42/Answerly-chatbot/internal/handlers"
	"github.com/Devam42/Answerly-chatbot/internal/llm"
	"github.com/Devam42/Answerly-chatbot/internal/logging"
	"github.com/Devam42/Answerly-chatbot/internal/session"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Answerly Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Model: %s)", cfg.Port, cfg.LLMModel)

	if cfg.LLMAPIKey == "" {
		log.Println("⚠️  LLM_API_KEY not set - assuming an unauthenticated local provider")
	}

	// Language model client (shared by summaries and answers)
	generator := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	// Audio transcription for uploaded media files
	transcriber := audio.NewService(cfg.WhisperBaseURL, cfg.WhisperAPIKey, cfg.WhisperModel)

	// Content extractors
	videoExtractor := extract.NewYouTubeExtractor(cfg.TranscriptServiceURL, transcriber)
	fileExtractor := extract.NewFileExtractor(transcriber)
	websiteExtractor := extract.NewWebsiteExtractor()
	wikipediaExtractor := extract.NewWikipediaExtractor(cfg.WikipediaLang)

	// Per-user session state
	sessions := session.NewStore()

	resolver := aggregate.NewResolver(videoExtractor, fileExtractor, websiteExtractor, wikipediaExtractor, extract.AllowedFile)
	aggregator := aggregate.New(generator, aggregate.Options{
		MaxContentLength:     cfg.MaxContentLength,
		SummaryWordLimit:     cfg.SummaryWordLimit,
		HistoryWindow:        cfg.HistoryWindow,
		ShortAnswerThreshold: cfg.ShortAnswerThreshold,
	})

	digestHandler := handlers.NewDigestHandler(sessions, resolver, aggregator, cfg.UploadDir, cfg.MaxSourcesPerKind)
	healthHandler := handlers.NewHealthHandler(sessions)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Answerly v1.0",
		ReadTimeout:  300 * time.Second, // transcription + generation of large inputs is slow
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  300 * time.Second,
		BodyLimit:    50 * 1024 * 1024, // 50MB limit for uploaded documents and media
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("answerly")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	app.Get("/health", healthHandler.Health)

	api := app.Group("/api")
	api.Post("/summary", digestHandler.Summary)
	api.Post("/ask_question", digestHandler.AskQuestion)
	api.Post("/end_conversation", digestHandler.EndConversation)

	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📝 Summary endpoint: http://localhost:%s/api/summary", cfg.Port)
	log.Printf("❓ Question endpoint: http://localhost:%s/api/ask_question", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

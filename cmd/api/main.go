package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/Bot-Dragon1122/ai-resume/internal/config"
	"github.com/Bot-Dragon1122/ai-resume/internal/handlers"
	"github.com/Bot-Dragon1122/ai-resume/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize services
	pdfParser := services.NewPDFParserService()
	promptBuilder := services.NewPromptBuilder()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI. A missing or broken key degrades /analyze into an
	// always-failing endpoint instead of crashing the process.
	var geminiService services.GeminiService
	if cfg.Gemini.APIKey == "" {
		log.Println("⚠️  GEMINI_API_KEY not set. API calls will be disabled.")
	} else {
		svc, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Printf("❌ Failed to initialize Gemini client: %v\n", err)
		} else {
			geminiService = svc
			log.Println("✅ Gemini AI initialized successfully")
		}
	}

	// Initialize Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(
		geminiService,
		pdfParser,
		promptBuilder,
		cfg.Storage.MaxUploadSize,
		cfg.Gemini.AnalyzeTimeout,
	)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Resume Analyzer",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxUploadSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.NewString()
		},
	}))
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	app.Get("/", handlers.HandleIndex)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	app.Post("/analyze", analyzeHandler.HandleAnalyze)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

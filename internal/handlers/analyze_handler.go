package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Bot-Dragon1122/ai-resume/internal/models"
	"github.com/Bot-Dragon1122/ai-resume/internal/services"
)

type AnalyzeHandler struct {
	gemini        services.GeminiService // nil when the API key was never configured
	pdfParser     services.PDFParserService
	promptBuilder *services.PromptBuilder
	maxFileSize   int64
	timeout       time.Duration
}

func NewAnalyzeHandler(
	gemini services.GeminiService,
	pdfParser services.PDFParserService,
	promptBuilder *services.PromptBuilder,
	maxFileSize int64,
	timeout time.Duration,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		gemini:        gemini,
		pdfParser:     pdfParser,
		promptBuilder: promptBuilder,
		maxFileSize:   maxFileSize,
		timeout:       timeout,
	}
}

// HandleAnalyze handles POST /analyze: validates the multipart request,
// extracts text from the uploaded resume, and asks Gemini for the analysis.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	if h.gemini == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Gemini API client not initialized. Check server logs for API Key error.",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	resumeFiles := form.File["resume"]
	jobDescriptions := form.Value["job_description"]

	if len(resumeFiles) == 0 || len(jobDescriptions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required data: resume file or job description.",
		})
	}

	resumeFile := resumeFiles[0]
	jobDescription := jobDescriptions[0]

	if resumeFile.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No resume file selected.",
		})
	}

	if !strings.HasSuffix(strings.ToLower(resumeFile.Filename), ".pdf") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file type. Please upload a PDF file.",
		})
	}

	if strings.TrimSpace(jobDescription) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Job description cannot be empty.",
		})
	}

	if resumeFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	file, err := resumeFile.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Internal Server Error: %v", err),
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Internal Server Error: %v", err),
		})
	}

	resumeText, err := h.pdfParser.ExtractText(data)
	if err != nil {
		log.Printf("❌ Failed to extract text from %s: %v\n", resumeFile.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not extract readable text from PDF. The document might be an image-only PDF.",
		})
	}

	system, prompt := h.promptBuilder.BuildAnalysisPrompt(jobDescription, resumeText)

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	analysis, err := h.gemini.Analyze(ctx, system, prompt)
	if err != nil {
		var upstreamErr *services.UpstreamError
		if errors.As(err, &upstreamErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": upstreamErr.Error(),
			})
		}
		log.Printf("❌ Unexpected error during Gemini API call: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Unexpected error: %v", err),
		})
	}

	return c.JSON(models.AnalysisResponse{
		Success:  true,
		Analysis: analysis,
	})
}

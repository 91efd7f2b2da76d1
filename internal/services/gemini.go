package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"
)

const maxRetries = 3

// sleep is swapped out in tests to keep backoff assertions fast.
var sleep = time.Sleep

// UpstreamError reports that the Gemini API kept failing until the retry
// budget ran out.
type UpstreamError struct {
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Gemini API Error after %d attempts: %v", e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type GeminiService interface {
	Analyze(ctx context.Context, systemInstruction, userPrompt string) (string, error)
}

// contentGenerator is the narrow slice of the genai client the service needs,
// so tests can substitute a fake transport.
type contentGenerator interface {
	generateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type genaiModels struct {
	client *genai.Client
}

func (m *genaiModels) generateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.client.Models.GenerateContent(ctx, model, contents, config)
}

type geminiService struct {
	models    contentGenerator
	modelName string
}

func NewGeminiService(apiKey, modelName string) (GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		models:    &genaiModels{client: client},
		modelName: modelName,
	}, nil
}

// Analyze implements GeminiService. API-reported errors are retried with
// exponential backoff (1s, 2s); any other failure aborts immediately.
func (g *geminiService) Analyze(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		log.Printf("🤖 Calling Gemini API (attempt %d/%d)\n", attempt+1, maxRetries)

		resp, err := g.models.generateContent(ctx, g.modelName, genai.Text(userPrompt), config)
		if err == nil {
			text := resp.Text()
			if text == "" {
				return "", errors.New("no text content in response")
			}
			return text, nil
		}

		var apiErr genai.APIError
		if !errors.As(err, &apiErr) {
			// Not an API-reported error, retrying will not help
			return "", err
		}

		lastErr = err
		log.Printf("⚠️  Gemini API error on attempt %d: %v\n", attempt+1, err)

		if attempt < maxRetries-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
			sleep(time.Duration(1<<attempt) * time.Second)
		}
	}

	return "", &UpstreamError{Attempts: maxRetries, Err: lastErr}
}

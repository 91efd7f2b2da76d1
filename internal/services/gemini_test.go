package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeCall struct {
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeGenerator struct {
	calls     []fakeCall
	responses []fakeResponse
}

func (f *fakeGenerator) generateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, fakeCall{contents: contents, config: config})
	res := f.responses[len(f.calls)-1]
	return res.resp, res.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()

	originalSleep := sleep
	var delays []time.Duration
	sleep = func(d time.Duration) {
		delays = append(delays, d)
	}
	t.Cleanup(func() { sleep = originalSleep })

	return &delays
}

func TestAnalyzeRetriesOnAPIError(t *testing.T) {
	delays := stubSleep(t)

	apiErr := genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}
	fake := &fakeGenerator{responses: []fakeResponse{
		{err: apiErr},
		{err: apiErr},
		{resp: textResponse("**85/100**")},
	}}

	g := &geminiService{models: fake, modelName: "gemini-2.0-flash"}

	result, err := g.Analyze(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "**85/100**", result)
	assert.Len(t, fake.calls, 3)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *delays)
}

func TestAnalyzeExhaustsRetries(t *testing.T) {
	stubSleep(t)

	apiErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	fake := &fakeGenerator{responses: []fakeResponse{
		{err: apiErr},
		{err: apiErr},
		{err: apiErr},
	}}

	g := &geminiService{models: fake, modelName: "gemini-2.0-flash"}

	_, err := g.Analyze(context.Background(), "system", "prompt")
	require.Error(t, err)
	assert.Len(t, fake.calls, 3)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 3, upstreamErr.Attempts)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestAnalyzeDoesNotRetryUnexpectedError(t *testing.T) {
	delays := stubSleep(t)

	fake := &fakeGenerator{responses: []fakeResponse{
		{err: errors.New("connection reset")},
	}}

	g := &geminiService{models: fake, modelName: "gemini-2.0-flash"}

	_, err := g.Analyze(context.Background(), "system", "prompt")
	require.Error(t, err)
	assert.Len(t, fake.calls, 1)
	assert.Empty(t, *delays)

	var upstreamErr *UpstreamError
	assert.False(t, errors.As(err, &upstreamErr))
}

func TestAnalyzeSendsSystemInstructionAndPrompt(t *testing.T) {
	fake := &fakeGenerator{responses: []fakeResponse{
		{resp: textResponse("ok")},
	}}

	g := &geminiService{models: fake, modelName: "gemini-2.0-flash"}

	_, err := g.Analyze(context.Background(), "act as an ATS", "analyze this resume")
	require.NoError(t, err)
	require.Len(t, fake.calls, 1)

	call := fake.calls[0]
	require.NotNil(t, call.config)
	require.NotNil(t, call.config.SystemInstruction)
	assert.Equal(t, "act as an ATS", call.config.SystemInstruction.Parts[0].Text)

	require.NotEmpty(t, call.contents)
	assert.Equal(t, "analyze this resume", call.contents[0].Parts[0].Text)
}

func TestAnalyzeEmptyResponseFailsWithoutRetry(t *testing.T) {
	delays := stubSleep(t)

	fake := &fakeGenerator{responses: []fakeResponse{
		{resp: &genai.GenerateContentResponse{}},
	}}

	g := &geminiService{models: fake, modelName: "gemini-2.0-flash"}

	_, err := g.Analyze(context.Background(), "system", "prompt")
	require.Error(t, err)
	assert.Len(t, fake.calls, 1)
	assert.Empty(t, *delays)
}

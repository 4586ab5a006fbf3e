// Package gemini implements the insight.Generator interface against
// Google's Gemini API. One model call per completed unit; any failure is
// surfaced to the caller, which falls back to the rule-based generator.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"regexp"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/unit-api/internal/config"
	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/phrazzld/unit-api/internal/insight"
)

// InsightGenerator calls Gemini to produce the completion narrative.
type InsightGenerator struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

// Ensure InsightGenerator implements the insight.Generator interface
var _ insight.Generator = (*InsightGenerator)(nil)

// NewInsightGenerator creates a Gemini-backed generator. The API key,
// model name and prompt template path must all be configured.
func NewInsightGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*InsightGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", insight.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", insight.ErrInvalidConfig)
	}
	if cfg.PromptTemplatePath == "" {
		return nil, fmt.Errorf("%w: prompt template path cannot be empty", insight.ErrInvalidConfig)
	}

	templateContent, err := os.ReadFile(cfg.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			insight.ErrInvalidConfig, cfg.PromptTemplatePath, err)
	}

	promptTemplate, err := template.New("insight").Parse(string(templateContent))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			insight.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			insight.ErrInvalidConfig, err)
	}

	return &InsightGenerator{
		logger:         logger.With("component", "gemini_generator"),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// Generate implements insight.Generator.Generate.
func (g *InsightGenerator) Generate(ctx context.Context, req insight.Request) (*insight.Insight, error) {
	prompt, err := g.createPrompt(ctx, req)
	if err != nil {
		return nil, err
	}

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(ctx, response, req.UnitType)
}

// createPrompt renders the prompt template with the request data.
func (g *InsightGenerator) createPrompt(ctx context.Context, req insight.Request) (string, error) {
	if len(req.Answers) == 0 {
		return "", ErrEmptyRequest
	}

	data := promptData{
		UnitType: string(req.UnitType),
		Category: req.Category,
		Areas: []promptArea{
			{Name: "vitality", Score: req.SubScores.Vitality},
			{Name: "relationship", Score: req.SubScores.Relationship},
			{Name: "growth", Score: req.SubScores.Growth},
			{Name: "resolve", Score: req.SubScores.Resolve},
			{Name: "stability", Score: req.SubScores.Stability},
		},
		Answers: req.Answers,
	}

	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	g.logger.DebugContext(ctx, "prompt generated",
		"prompt_length", promptBuffer.Len(),
		"answer_count", len(req.Answers))

	return promptBuffer.String(), nil
}

// jsonObject pulls the first JSON object out of model output that may be
// wrapped in markdown fences or prose.
var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// callWithRetry calls the model with exponential backoff and jitter.
// Transient errors retry up to MaxRetries; malformed or blocked
// responses return immediately.
func (g *InsightGenerator) callWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "calling Gemini API",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		response, transient, err := g.callOnce(ctx, prompt)
		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !transient {
			return nil, err
		}
		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				insight.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", insight.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce makes a single model call and classifies any failure as
// transient or permanent.
func (g *InsightGenerator) callOnce(ctx context.Context, prompt string) (*responseSchema, bool, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, true, err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, false, fmt.Errorf("%w: no content generated", insight.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, false, fmt.Errorf("%w: finish reason safety", insight.ErrContentBlocked)
	}

	text := resp.Text()
	raw := jsonObject.FindString(text)
	if raw == "" {
		return nil, false, fmt.Errorf("%w: no JSON object in response", insight.ErrInvalidResponse)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse JSON response: %v", insight.ErrInvalidResponse, err)
	}
	return &parsed, false, nil
}

// parseResponse validates and clamps the model output into the insight
// contract: length caps, filtered keywords, a sane next-unit hint.
func (g *InsightGenerator) parseResponse(ctx context.Context, response *responseSchema, unitType domain.UnitType) (*insight.Insight, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", insight.ErrInvalidResponse)
	}
	if response.Encouragement == "" {
		return nil, fmt.Errorf("%w: missing encouragement", insight.ErrInvalidResponse)
	}

	hint := domain.UnitType(response.NextUnitHint)
	if !hint.IsValid() || hint == unitType {
		hint = domain.UnitSelf
		if unitType == domain.UnitSelf {
			hint = domain.UnitGrowth
		}
	}

	result := &insight.Insight{
		Encouragement: insight.Truncate(response.Encouragement, insight.MaxEncouragementLen),
		Insight:       insight.Truncate(response.Insight, insight.MaxInsightLen),
		NextUnitHint:  hint,
		Keywords:      insight.FilterKeywords(response.Keywords),
	}

	g.logger.DebugContext(ctx, "parsed model response",
		"keyword_count", len(result.Keywords),
		"next_unit_hint", result.NextUnitHint)

	return result, nil
}

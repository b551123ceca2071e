package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quizly/internal/config"
	"quizly/internal/domain"
	"quizly/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// DefaultMaxTranscriptChars bounds the transcript sent to the model.
const DefaultMaxTranscriptChars = 25000

// ErrMissingCredential is returned when no generative model could be configured.
var ErrMissingCredential = errors.New("generative AI API key is not configured (GEMINI_API_KEY)")

// NewModel builds the langchaingo model selected by generator.provider. For Gemini a
// missing API key yields a nil model and no error so the server can still start.
func NewModel(ctx context.Context, cfg config.GeneratorConfig) (llms.Model, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		if cfg.APIKey == "" {
			logger.Get().Warn("Generator API key is missing; quiz creation will fail until it is configured")
			return nil, nil
		}
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return llm, nil
	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.OllamaServerURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}

// LLMQuizGenerator implements domain.QuizContentGenerator on a langchaingo model.
type LLMQuizGenerator struct {
	model          llms.Model
	language       string
	maxChars       int
	repairAttempts int
	temperature    float64
}

// NewLLMQuizGenerator accepts a nil model; Generate then fails fast without a network call.
func NewLLMQuizGenerator(model llms.Model, cfg config.GeneratorConfig) *LLMQuizGenerator {
	g := &LLMQuizGenerator{
		model:          model,
		language:       cfg.Language,
		maxChars:       cfg.MaxTranscriptChars,
		repairAttempts: cfg.RepairAttempts,
		temperature:    cfg.Temperature,
	}
	if g.language == "" {
		g.language = "German"
	}
	if g.maxChars <= 0 {
		g.maxChars = DefaultMaxTranscriptChars
	}
	if g.repairAttempts < 0 {
		g.repairAttempts = 0
	}
	return g
}

// Generate prompts the model for a quiz and returns a normalized draft that passed
// validation. A rejected draft gets at most repairAttempts corrective re-prompts.
func (g *LLMQuizGenerator) Generate(ctx context.Context, transcript, sourceURL string) (*domain.QuizDraft, error) {
	if g.model == nil {
		return nil, domain.NewGenerationError("quiz generation is not configured", ErrMissingCredential)
	}
	l := logger.Get()

	text, truncated := truncateRunes(transcript, g.maxChars)
	if truncated {
		l.Info("Transcript truncated for prompt", zap.Int("max_chars", g.maxChars), zap.Int("original_bytes", len(transcript)))
	}
	prompt := buildPrompt(g.language, domain.OptionsPerQuestion, sourceURL, text)

	raw, err := g.call(ctx, prompt)
	if err != nil {
		return nil, err
	}
	draft, parseErr := parseDraft(raw)

	for attempt := 1; parseErr != nil && attempt <= g.repairAttempts; attempt++ {
		l.Warn("Model output rejected, requesting repair",
			zap.Int("attempt", attempt),
			zap.Error(parseErr))
		raw, err = g.call(ctx, buildRepairPrompt(prompt, raw, parseErr))
		if err != nil {
			return nil, err
		}
		draft, parseErr = parseDraft(raw)
	}
	if parseErr != nil {
		l.Error("Model output failed validation", zap.Error(parseErr), zap.String("raw_response", raw))
		return nil, domain.NewGenerationError("model returned an invalid quiz", parseErr)
	}

	l.Info("Quiz content generated", zap.String("title", draft.Title), zap.Int("questions", len(draft.Questions)))
	return draft, nil
}

func (g *LLMQuizGenerator) call(ctx context.Context, prompt string) (string, error) {
	raw, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt,
		llms.WithTemperature(g.temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", domain.NewGenerationError("generative model call aborted", err)
		}
		return "", domain.NewGenerationError("generative model call failed", err)
	}
	return raw, nil
}

func parseDraft(raw string) (*domain.QuizDraft, error) {
	cleaned := CleanResponse(raw)
	var draft domain.QuizDraft
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return nil, fmt.Errorf("response is not a valid JSON quiz object: %w", err)
	}
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return &draft, nil
}

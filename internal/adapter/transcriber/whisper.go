package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"quizly/internal/config"
	"quizly/internal/domain"
	"quizly/internal/logger"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// MaxUploadBytes is the largest file the hosted Whisper endpoint accepts.
const MaxUploadBytes int64 = 25 << 20

// audioClient is the part of the OpenAI client the transcriber needs.
type audioClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// WhisperTranscriber sends audio files to a Whisper-compatible transcription endpoint.
//
// The client is created lazily on first use and shared by every request for the rest
// of the process lifetime. It is read-only after initialization; this is the only
// piece of process-wide state in the pipeline.
type WhisperTranscriber struct {
	cfg       config.TranscriberConfig
	newClient func(cfg config.TranscriberConfig) (audioClient, error)

	once    sync.Once
	client  audioClient
	initErr error
}

func NewWhisperTranscriber(cfg config.TranscriberConfig) *WhisperTranscriber {
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	return &WhisperTranscriber{cfg: cfg, newClient: newOpenAIClient}
}

func newOpenAIClient(cfg config.TranscriberConfig) (audioClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("transcriber API key is not configured (OPENAI_API_KEY)")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

func (t *WhisperTranscriber) getClient() (audioClient, error) {
	t.once.Do(func() {
		t.client, t.initErr = t.newClient(t.cfg)
		if t.initErr == nil {
			logger.Get().Info("Transcription client initialized", zap.String("model", t.cfg.Model))
		}
	})
	return t.client, t.initErr
}

// Transcribe treats the whole file as one utterance and returns its plain text.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil || info.IsDir() {
		return "", domain.NewTranscriptionError("audio file not found", fmt.Errorf("%w: %s", domain.ErrFileNotFound, audioPath))
	}
	if info.Size() > MaxUploadBytes {
		return "", domain.NewTranscriptionError(
			fmt.Sprintf("audio file is %d MB, above the %d MB upload limit; lower pipeline.audio_quality", info.Size()>>20, MaxUploadBytes>>20),
			nil)
	}

	client, err := t.getClient()
	if err != nil {
		return "", domain.NewTranscriptionError("transcription model unavailable", err)
	}

	resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.cfg.Model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", domain.NewTranscriptionError("transcription failed", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", domain.NewTranscriptionError("transcription produced no text", nil)
	}
	logger.Get().Debug("Transcription finished",
		zap.String("path", audioPath),
		zap.Int("chars", len(text)),
		zap.String("language", resp.Language))
	return text, nil
}

// Package audio downloads the audio track of a video into a request-scoped directory.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"quizly/internal/config"
	"quizly/internal/domain"
)

// CommandRunner runs an external tool and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// FilePrefix is the file name prefix every acquirer writes for a video.
func FilePrefix(id domain.VideoID) string {
	return "audio_" + string(id)
}

// FindFileByPrefix returns the first regular file in dir whose name starts with prefix
// and ends with ext. Downloaders pick their own final extension, so callers look the
// result up instead of assuming a file name.
func FindFileByPrefix(dir, prefix, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.Type().IsRegular() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ext) {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("%w: %s*%s in %s", domain.ErrFileNotFound, prefix, ext, dir)
}

// NewAcquirer returns the acquirer selected by pipeline.audio_backend.
func NewAcquirer(cfg config.PipelineConfig) (domain.AudioAcquirer, error) {
	switch cfg.AudioBackend {
	case config.AudioBackendYtDlp, "":
		return NewYtDlpAcquirer(cfg.YtDlpPath, cfg.AudioCodec, cfg.AudioQuality), nil
	case config.AudioBackendYouTube:
		return NewYouTubeAcquirer(cfg.FFmpegPath, cfg.AudioCodec, cfg.AudioQuality), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", cfg.AudioBackend)
	}
}

// tail keeps the end of tool output, where the actual error usually is.
func tail(output []byte, n int) string {
	s := strings.TrimSpace(string(output))
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

package audio

import (
	"context"
	"fmt"
	"path/filepath"

	"quizly/internal/domain"
	"quizly/internal/logger"

	"go.uber.org/zap"
)

// YtDlpAcquirer shells out to the yt-dlp CLI, which selects the best audio stream and
// transcodes it with ffmpeg.
type YtDlpAcquirer struct {
	ytDlpPath string
	codec     string
	quality   string
	run       CommandRunner
}

func NewYtDlpAcquirer(ytDlpPath, codec, quality string) *YtDlpAcquirer {
	if ytDlpPath == "" {
		ytDlpPath = "yt-dlp"
	}
	if codec == "" {
		codec = "mp3"
	}
	return &YtDlpAcquirer{ytDlpPath: ytDlpPath, codec: codec, quality: quality, run: execRunner}
}

func (a *YtDlpAcquirer) Acquire(ctx context.Context, id domain.VideoID, destDir string) (string, error) {
	prefix := FilePrefix(id)
	args := []string{
		"--format", "bestaudio/best",
		"--no-playlist",
		"--extract-audio",
		"--audio-format", a.codec,
		"--postprocessor-args", "ExtractAudio:-ac 1",
		"--output", filepath.Join(destDir, prefix+".%(ext)s"),
		"--quiet",
		"--no-warnings",
	}
	if a.quality != "" {
		args = append(args, "--audio-quality", a.quality)
	}
	args = append(args, id.CanonicalURL())

	logger.Get().Debug("Running yt-dlp", zap.String("video_id", id.String()), zap.Strings("args", args))
	output, err := a.run(ctx, a.ytDlpPath, args...)
	if err != nil {
		return "", domain.NewAcquisitionError("audio download failed", fmt.Errorf("%w: %s", err, tail(output, 500)))
	}

	path, err := FindFileByPrefix(destDir, prefix, "."+a.codec)
	if err != nil {
		return "", domain.NewAcquisitionError("downloaded audio file not found", err)
	}
	return path, nil
}

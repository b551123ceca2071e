package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quizly/internal/domain"
	"quizly/internal/logger"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"
)

// YouTubeAcquirer fetches the stream in-process with kkdai/youtube and converts it
// with ffmpeg. It avoids the yt-dlp dependency at the cost of being more fragile
// against upstream player changes.
type YouTubeAcquirer struct {
	client     *youtube.Client
	ffmpegPath string
	codec      string
	quality    string
	run        CommandRunner
}

func NewYouTubeAcquirer(ffmpegPath, codec, quality string) *YouTubeAcquirer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if codec == "" {
		codec = "mp3"
	}
	return &YouTubeAcquirer{
		client:     &youtube.Client{HTTPClient: &http.Client{Timeout: 5 * time.Minute}},
		ffmpegPath: ffmpegPath,
		codec:      codec,
		quality:    quality,
		run:        execRunner,
	}
}

func (a *YouTubeAcquirer) Acquire(ctx context.Context, id domain.VideoID, destDir string) (string, error) {
	log := logger.Get()

	video, err := a.client.GetVideoContext(ctx, string(id))
	if err != nil {
		return "", domain.NewAcquisitionError("failed to get video metadata", err)
	}

	format := bestAudioFormat(video.Formats)
	if format == nil {
		return "", domain.NewAcquisitionError("no audio stream available", fmt.Errorf("video %s has no audio format", id))
	}
	log.Debug("Selected audio format",
		zap.String("video_id", id.String()),
		zap.String("mime_type", format.MimeType),
		zap.Int("bitrate", format.Bitrate))

	prefix := FilePrefix(id)
	sourcePath := filepath.Join(destDir, prefix+".source")
	if err := a.downloadStream(ctx, video, format, sourcePath); err != nil {
		return "", domain.NewAcquisitionError("audio download failed", err)
	}
	defer os.Remove(sourcePath)

	outputPath := filepath.Join(destDir, prefix+"."+a.codec)
	if output, err := a.run(ctx, a.ffmpegPath, a.conversionArgs(sourcePath, outputPath)...); err != nil {
		return "", domain.NewAcquisitionError("audio conversion failed", fmt.Errorf("%w: %s", err, tail(output, 500)))
	}

	path, err := FindFileByPrefix(destDir, prefix, "."+a.codec)
	if err != nil {
		return "", domain.NewAcquisitionError("converted audio file not found", err)
	}
	return path, nil
}

func (a *YouTubeAcquirer) downloadStream(ctx context.Context, video *youtube.Video, format *youtube.Format, outputPath string) error {
	stream, _, err := a.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	return writeFile(outputPath, stream)
}

// conversionArgs downmixes to mono so speech stays small enough for the transcription upload.
func (a *YouTubeAcquirer) conversionArgs(sourcePath, outputPath string) []string {
	args := []string{"-y", "-i", sourcePath, "-vn", "-ac", "1"}
	if a.quality != "" {
		args = append(args, "-b:a", a.quality)
	}
	return append(args, outputPath)
}

// writeFile copies r into a new file at path. A failed close means buffered bytes were
// lost, so it is reported like a failed write.
func writeFile(path string, r io.Reader) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return fmt.Errorf("failed to write stream to file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// bestAudioFormat picks the highest bitrate audio-only format, preferring mp4/m4a
// containers and falling back to any audio format.
func bestAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	pick := func(accept func(f *youtube.Format) bool) {
		for i := range formats {
			f := &formats[i]
			if !strings.Contains(f.MimeType, "audio") || !accept(f) {
				continue
			}
			if best == nil || f.Bitrate > best.Bitrate {
				best = f
			}
		}
	}

	pick(func(f *youtube.Format) bool {
		return strings.Contains(f.MimeType, "mp4") || strings.Contains(f.MimeType, "m4a")
	})
	if best == nil {
		pick(func(*youtube.Format) bool { return true })
	}
	return best
}

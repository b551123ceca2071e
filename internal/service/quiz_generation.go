package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"quizly/internal/cache"
	"quizly/internal/config"
	"quizly/internal/domain"
	"quizly/internal/dto"
	"quizly/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuizGenerationService turns a video URL into a persisted quiz.
type QuizGenerationService interface {
	CreateQuiz(ctx context.Context, ownerID, rawURL string) (*dto.QuizResponse, error)
}

// quizGenerationService runs VALIDATE_URL, ACQUIRE_AUDIO, TRANSCRIBE, GENERATE_CONTENT and PERSIST
// in order. The first failing phase ends the run; CLEANUP of the temp directory runs on every path.
type quizGenerationService struct {
	acquirer    domain.AudioAcquirer
	transcriber domain.Transcriber
	generator   domain.QuizContentGenerator
	repo        domain.QuizRepository
	cache       domain.Cache
	cfg         config.PipelineConfig

	// flights shares one acquire+transcribe run between concurrent requests for the same video.
	flights singleflight.Group
	// flightPhases holds the phase each in-flight run has reached, keyed by video id.
	flightPhases sync.Map
}

// NewQuizGenerationService wires the pipeline. cache may be nil, which disables transcript caching.
func NewQuizGenerationService(
	acquirer domain.AudioAcquirer,
	transcriber domain.Transcriber,
	generator domain.QuizContentGenerator,
	repo domain.QuizRepository,
	cache domain.Cache,
	cfg config.PipelineConfig,
) QuizGenerationService {
	return &quizGenerationService{
		acquirer:    acquirer,
		transcriber: transcriber,
		generator:   generator,
		repo:        repo,
		cache:       cache,
		cfg:         cfg,
	}
}

func (s *quizGenerationService) CreateQuiz(ctx context.Context, ownerID, rawURL string) (*dto.QuizResponse, error) {
	start := time.Now()

	videoID, ok := domain.ExtractVideoID(strings.TrimSpace(rawURL))
	if !ok {
		pipelineRunsTotal.WithLabelValues(outcomeFailure, string(domain.PhaseValidateURL)).Inc()
		return nil, domain.NewValidationError("Invalid YouTube URL").WithPhase(domain.PhaseValidateURL)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	sourceURL := videoID.CanonicalURL()
	quiz, err := s.run(ctx, ownerID, videoID, sourceURL)
	if err != nil {
		phase := string(domain.PhaseGenerateContent)
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) && domainErr.Phase != "" {
			phase = string(domainErr.Phase)
		}
		pipelineRunsTotal.WithLabelValues(outcomeFailure, phase).Inc()
		logger.Get().Error("Quiz generation failed",
			zap.String("video_id", videoID.String()),
			zap.String("phase", phase),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	pipelineRunsTotal.WithLabelValues(outcomeSuccess, phaseComplete).Inc()
	logger.Get().Info("Quiz generated",
		zap.String("video_id", videoID.String()),
		zap.String("quizID", quiz.ID),
		zap.Int("questions", len(quiz.Questions)),
		zap.Duration("duration", time.Since(start)))
	return toQuizResponse(quiz), nil
}

func (s *quizGenerationService) run(ctx context.Context, ownerID string, videoID domain.VideoID, sourceURL string) (*domain.Quiz, error) {
	transcript, err := s.transcript(ctx, videoID)
	if err != nil {
		return nil, err
	}

	var draft *domain.QuizDraft
	err = s.runPhase(videoID, domain.PhaseGenerateContent, func() error {
		var genErr error
		draft, genErr = s.generator.Generate(ctx, transcript, sourceURL)
		if genErr == nil && draft == nil {
			genErr = errors.New("generator returned no draft")
		}
		return genErr
	})
	if err != nil {
		return nil, err
	}

	quiz := domain.NewQuizFromDraft(ownerID, sourceURL, draft)
	err = s.runPhase(videoID, domain.PhasePersist, func() error {
		return s.repo.CreateWithQuestions(ctx, quiz)
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// transcript returns the cached transcript of the video or produces it. Concurrent callers for the
// same video wait on a single flight. The flight is detached from the caller that started it and
// bounded by pipeline.timeout, so one caller giving up never fails the others.
func (s *quizGenerationService) transcript(ctx context.Context, videoID domain.VideoID) (string, error) {
	key := cache.TranscriptKey(videoID.String())
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil && cached != "":
			logger.Get().Info("Transcript cache hit, skipping acquisition", zap.String("video_id", videoID.String()))
			return cached, nil
		case err != nil && !errors.Is(err, domain.ErrCacheMiss):
			logger.Get().Warn("Transcript cache read failed", zap.String("video_id", videoID.String()), zap.Error(err))
		}
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(videoID.String(), func() (interface{}, error) {
		runCtx := flightCtx
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, s.cfg.Timeout)
			defer cancel()
		}
		return s.acquireAndTranscribe(runCtx, videoID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			logger.Get().Debug("Joined in-flight transcription", zap.String("video_id", videoID.String()))
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		phase := s.flightPhase(videoID)
		return "", domain.NewInternalError("request cancelled during "+string(phase), ctx.Err()).WithPhase(phase)
	}
}

// flightPhase reports how far the shared run for videoID has got.
func (s *quizGenerationService) flightPhase(videoID domain.VideoID) domain.Phase {
	if v, ok := s.flightPhases.Load(videoID.String()); ok {
		return v.(domain.Phase)
	}
	return domain.PhaseAcquireAudio
}

func (s *quizGenerationService) acquireAndTranscribe(ctx context.Context, videoID domain.VideoID) (string, error) {
	key := videoID.String()
	s.flightPhases.Store(key, domain.PhaseAcquireAudio)
	defer s.flightPhases.Delete(key)

	baseDir := s.cfg.TempDir
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	workDir := filepath.Join(baseDir, "quizly-"+videoID.String()+"-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return "", domain.NewAcquisitionError("failed to create temp directory", err)
	}
	defer func() {
		s.flightPhases.Store(key, domain.PhaseCleanup)
		s.cleanup(videoID, workDir)
	}()

	var audioPath string
	err := s.runPhase(videoID, domain.PhaseAcquireAudio, func() error {
		var acqErr error
		audioPath, acqErr = s.acquirer.Acquire(ctx, videoID, workDir)
		return acqErr
	})
	if err != nil {
		return "", err
	}

	s.flightPhases.Store(key, domain.PhaseTranscribe)
	var transcript string
	err = s.runPhase(videoID, domain.PhaseTranscribe, func() error {
		var trErr error
		transcript, trErr = s.transcriber.Transcribe(ctx, audioPath)
		return trErr
	})
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.TranscriptKey(videoID.String()), transcript, s.cfg.TranscriptCacheTTL); err != nil {
			logger.Get().Warn("Transcript cache write failed", zap.String("video_id", videoID.String()), zap.Error(err))
		}
	}
	return transcript, nil
}

func (s *quizGenerationService) cleanup(videoID domain.VideoID, dir string) {
	start := time.Now()
	err := os.RemoveAll(dir)
	pipelinePhaseDuration.WithLabelValues(string(domain.PhaseCleanup)).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Get().Error("Failed to remove temp directory",
			zap.String("video_id", videoID.String()),
			zap.String("phase", string(domain.PhaseCleanup)),
			zap.String("dir", dir),
			zap.Error(err))
		return
	}
	logger.Get().Debug("Temp directory removed", zap.String("video_id", videoID.String()), zap.String("dir", dir))
}

// runPhase times fn, logs its start and end, and tags a failure with the phase.
func (s *quizGenerationService) runPhase(videoID domain.VideoID, phase domain.Phase, fn func() error) error {
	log := logger.Get().With(zap.String("video_id", videoID.String()), zap.String("phase", string(phase)))
	log.Info("Pipeline phase started")

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	pipelinePhaseDuration.WithLabelValues(string(phase)).Observe(elapsed.Seconds())

	if err != nil {
		log.Error("Pipeline phase failed", zap.Duration("duration", elapsed), zap.Error(err))
		return phaseError(phase, err)
	}
	log.Info("Pipeline phase finished", zap.Duration("duration", elapsed))
	return nil
}

// phaseError returns err as a DomainError tagged with phase. Errors already carrying a phase are
// returned as is; untagged domain errors are copied since a flight result can reach several callers.
func phaseError(phase domain.Phase, err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Phase != "" {
			return err
		}
		tagged := *domainErr
		tagged.Phase = phase
		return &tagged
	}

	switch phase {
	case domain.PhaseAcquireAudio:
		return domain.NewAcquisitionError("audio acquisition failed", err)
	case domain.PhaseTranscribe:
		return domain.NewTranscriptionError("transcription failed", err)
	case domain.PhaseGenerateContent:
		return domain.NewGenerationError("quiz generation failed", err)
	case domain.PhasePersist:
		return domain.NewPersistenceError("failed to save quiz", err)
	default:
		return domain.NewInternalError("pipeline failed", err).WithPhase(phase)
	}
}

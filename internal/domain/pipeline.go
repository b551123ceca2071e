package domain

import "context"

// AudioAcquirer downloads the audio track of a video into destDir and returns
// the path of the single resulting audio file.
type AudioAcquirer interface {
	Acquire(ctx context.Context, id VideoID, destDir string) (string, error)
}

// Transcriber turns an audio file into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// QuizContentGenerator produces a validated draft from a transcript.
type QuizContentGenerator interface {
	Generate(ctx context.Context, transcript, sourceURL string) (*QuizDraft, error)
}

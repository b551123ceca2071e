package transcriber

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"quizly/internal/config"
	"quizly/internal/domain"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAudioClient struct {
	mu       sync.Mutex
	requests []openai.AudioRequest
	text     string
	err      error
}

func (f *fakeAudioClient) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.AudioResponse{}, f.err
	}
	return openai.AudioResponse{Text: f.text}, nil
}

func newTestTranscriber(client audioClient, initErr error, inits *int) *WhisperTranscriber {
	tr := NewWhisperTranscriber(config.TranscriberConfig{APIKey: "key"})
	tr.newClient = func(config.TranscriberConfig) (audioClient, error) {
		*inits++
		return client, initErr
	}
	return tr
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio_abcdefghijk.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o600))
	return path
}

func TestWhisperTranscriber_Transcribe(t *testing.T) {
	ctx := context.Background()

	t.Run("returns trimmed text and initializes the client once", func(t *testing.T) {
		client := &fakeAudioClient{text: "  Hallo und willkommen.  "}
		inits := 0
		tr := newTestTranscriber(client, nil, &inits)
		path := writeAudio(t)

		for i := 0; i < 3; i++ {
			text, err := tr.Transcribe(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, "Hallo und willkommen.", text)
		}
		assert.Equal(t, 1, inits)
		require.Len(t, client.requests, 3)
		assert.Equal(t, openai.Whisper1, client.requests[0].Model)
		assert.Equal(t, path, client.requests[0].FilePath)
	})

	t.Run("missing file fails before any client call", func(t *testing.T) {
		inits := 0
		tr := newTestTranscriber(&fakeAudioClient{}, nil, &inits)

		_, err := tr.Transcribe(ctx, filepath.Join(t.TempDir(), "nope.mp3"))
		require.Error(t, err)
		assert.True(t, domain.HasCode(err, domain.CodeTranscription))
		assert.ErrorIs(t, err, domain.ErrFileNotFound)
		assert.Equal(t, 0, inits)
	})

	t.Run("directory is not an audio file", func(t *testing.T) {
		inits := 0
		tr := newTestTranscriber(&fakeAudioClient{}, nil, &inits)

		_, err := tr.Transcribe(ctx, t.TempDir())
		assert.ErrorIs(t, err, domain.ErrFileNotFound)
	})

	t.Run("oversized file fails before any client call", func(t *testing.T) {
		inits := 0
		tr := newTestTranscriber(&fakeAudioClient{}, nil, &inits)
		path := writeAudio(t)
		require.NoError(t, os.Truncate(path, MaxUploadBytes+1))

		_, err := tr.Transcribe(ctx, path)
		require.Error(t, err)
		assert.True(t, domain.HasCode(err, domain.CodeTranscription))
		assert.Contains(t, err.Error(), "upload limit")
		assert.Equal(t, 0, inits)
	})

	t.Run("file at the upload limit is sent", func(t *testing.T) {
		client := &fakeAudioClient{text: "ok"}
		inits := 0
		tr := newTestTranscriber(client, nil, &inits)
		path := writeAudio(t)
		require.NoError(t, os.Truncate(path, MaxUploadBytes))

		_, err := tr.Transcribe(ctx, path)
		require.NoError(t, err)
		assert.Len(t, client.requests, 1)
	})

	t.Run("initialization error is sticky", func(t *testing.T) {
		inits := 0
		tr := newTestTranscriber(nil, errors.New("no key"), &inits)
		path := writeAudio(t)

		_, err := tr.Transcribe(ctx, path)
		require.Error(t, err)
		assert.True(t, domain.HasCode(err, domain.CodeTranscription))
		_, err = tr.Transcribe(ctx, path)
		require.Error(t, err)
		assert.Equal(t, 1, inits)
	})

	t.Run("remote failure", func(t *testing.T) {
		inits := 0
		tr := newTestTranscriber(&fakeAudioClient{err: errors.New("429 too many requests")}, nil, &inits)

		_, err := tr.Transcribe(ctx, writeAudio(t))
		require.Error(t, err)
		assert.True(t, domain.HasCode(err, domain.CodeTranscription))
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty transcript", func(t *testing.T) {
		inits := 0
		tr := newTestTranscriber(&fakeAudioClient{text: "   "}, nil, &inits)

		_, err := tr.Transcribe(ctx, writeAudio(t))
		assert.True(t, domain.HasCode(err, domain.CodeTranscription))
	})
}

func TestNewOpenAIClient(t *testing.T) {
	_, err := newOpenAIClient(config.TranscriberConfig{})
	assert.Error(t, err)

	client, err := newOpenAIClient(config.TranscriberConfig{APIKey: "k", BaseURL: "http://localhost:9000/v1"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguamentor/backend/internal/models"
)

func newTestWorker(t *testing.T, provider *fakeProvider, broker *fakeBroker) (*VoiceWorker, string) {
	t.Helper()

	dir := t.TempDir()
	storage, err := NewStorageService(dir)
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	return NewVoiceWorker(broker, storage, NewVoiceAnalyzer(provider), "voice_analysis", "feedback_ready", logger), dir
}

func uploadBody(t *testing.T, msg models.UploadMessage) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestHandleMessagePublishesResult(t *testing.T) {
	provider := &fakeProvider{
		transcript: "Hello world",
		response:   `{"correction":"Hello, world.","grammar_score":90,"pron_score":80,"cefr":"A2","feedback_text":"Nice."}`,
	}
	broker := &fakeBroker{}
	worker, dir := newTestWorker(t, provider, broker)

	path := filepath.Join(dir, "sample.wav")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0644))

	err := worker.HandleMessage(context.Background(), uploadBody(t, models.UploadMessage{
		ID:       "u-1",
		Filename: "sample.wav",
		Size:     2048,
		Filepath: path,
	}))
	require.NoError(t, err)

	assert.Equal(t, "sample.wav", provider.filename)
	assert.Len(t, provider.audio, 2048)

	require.Len(t, broker.messages, 1)
	assert.Equal(t, "feedback_ready", broker.messages[0].queue)

	result, ok := broker.messages[0].payload.(models.ResultMessage)
	require.True(t, ok)
	assert.Equal(t, "sample.wav", result.OriginalName)
	assert.Equal(t, path, result.Filepath)
	assert.Equal(t, "Hello world", result.Transcription)
	assert.Equal(t, int64(2048), result.Metadata.Size)
	assert.Equal(t, models.CEFRA2, result.Analysis.CEFR)
	assert.False(t, result.Analysis.Degraded)
}

func TestHandleMessagePublishesDegradedAnalysis(t *testing.T) {
	provider := &fakeProvider{transcript: "Hello world", response: "Sounds good overall."}
	broker := &fakeBroker{}
	worker, dir := newTestWorker(t, provider, broker)

	path := filepath.Join(dir, "a.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

	require.NoError(t, worker.HandleMessage(context.Background(), uploadBody(t, models.UploadMessage{Filename: "a.wav", Size: 4, Filepath: path})))

	require.Len(t, broker.messages, 1)
	result := broker.messages[0].payload.(models.ResultMessage)
	assert.True(t, result.Analysis.Degraded)
	assert.Equal(t, "Sounds good overall.", result.Analysis.FeedbackText)
}

func TestHandleMessageSkipsMissingFile(t *testing.T) {
	tests := []struct {
		name     string
		filepath func(dir string) string
	}{
		{name: "no filepath", filepath: func(string) string { return "" }},
		{name: "file gone", filepath: func(dir string) string { return filepath.Join(dir, "sample.wav") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{transcript: "unused"}
			broker := &fakeBroker{}
			worker, dir := newTestWorker(t, provider, broker)

			msg := models.UploadMessage{Filename: "sample.wav", Size: 2048, Filepath: tt.filepath(dir)}
			err := worker.HandleMessage(context.Background(), uploadBody(t, msg))
			assert.NoError(t, err)
			assert.Empty(t, broker.messages)
			assert.Empty(t, provider.filename)
		})
	}
}

func TestHandleMessageDropsOnFailure(t *testing.T) {
	t.Run("path outside upload dir", func(t *testing.T) {
		provider := &fakeProvider{transcript: "unused"}
		broker := &fakeBroker{}
		worker, _ := newTestWorker(t, provider, broker)

		err := worker.HandleMessage(context.Background(), uploadBody(t, models.UploadMessage{Filename: "passwd", Filepath: "/etc/passwd"}))
		require.ErrorIs(t, err, ErrInvalidKey)
		assert.False(t, IsRequeue(err))
		assert.Empty(t, provider.filename)
		assert.Empty(t, broker.messages)
	})

	t.Run("undecodable body", func(t *testing.T) {
		worker, _ := newTestWorker(t, &fakeProvider{}, &fakeBroker{})
		err := worker.HandleMessage(context.Background(), []byte("not json"))
		require.Error(t, err)
		assert.False(t, IsRequeue(err))
	})

	t.Run("transcription error", func(t *testing.T) {
		broker := &fakeBroker{}
		worker, dir := newTestWorker(t, &fakeProvider{transcribeErr: errors.New("whisper down")}, broker)
		path := filepath.Join(dir, "a.wav")
		require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

		err := worker.HandleMessage(context.Background(), uploadBody(t, models.UploadMessage{Filename: "a.wav", Filepath: path}))
		require.Error(t, err)
		assert.False(t, IsRequeue(err))
		assert.Empty(t, broker.messages)
	})

	t.Run("scoring error", func(t *testing.T) {
		broker := &fakeBroker{}
		worker, dir := newTestWorker(t, &fakeProvider{transcript: "hi", generateErr: errors.New("quota")}, broker)
		path := filepath.Join(dir, "a.wav")
		require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

		err := worker.HandleMessage(context.Background(), uploadBody(t, models.UploadMessage{Filename: "a.wav", Filepath: path}))
		require.Error(t, err)
		assert.False(t, IsRequeue(err))
		assert.Empty(t, broker.messages)
	})
}

func TestHandleMessageRequeuesOnPublishFailure(t *testing.T) {
	broker := &fakeBroker{err: errors.New("channel closed")}
	worker, dir := newTestWorker(t, &fakeProvider{transcript: "hi", response: `{}`}, broker)
	path := filepath.Join(dir, "a.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

	err := worker.HandleMessage(context.Background(), uploadBody(t, models.UploadMessage{Filename: "a.wav", Filepath: path}))
	require.Error(t, err)
	assert.True(t, IsRequeue(err))
}

func TestRunConsumesVoiceQueue(t *testing.T) {
	broker := &fakeBroker{}
	worker, _ := newTestWorker(t, &fakeProvider{}, broker)

	require.NoError(t, worker.Run(context.Background()))
	assert.Equal(t, []string{"voice_analysis"}, broker.consumed)
}

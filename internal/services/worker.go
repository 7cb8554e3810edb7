package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"linguamentor/backend/internal/metrics"
	"linguamentor/backend/internal/models"
)

// VoiceWorker consumes upload messages, runs transcription and scoring and
// publishes one result message per processed upload.
type VoiceWorker struct {
	broker        Broker
	storage       StorageService
	analyzer      *VoiceAnalyzer
	voiceQueue    string
	feedbackQueue string
	logger        logrus.FieldLogger
}

func NewVoiceWorker(
	broker Broker,
	storage StorageService,
	analyzer *VoiceAnalyzer,
	voiceQueue string,
	feedbackQueue string,
	logger logrus.FieldLogger,
) *VoiceWorker {
	return &VoiceWorker{
		broker:        broker,
		storage:       storage,
		analyzer:      analyzer,
		voiceQueue:    voiceQueue,
		feedbackQueue: feedbackQueue,
		logger:        logger,
	}
}

// Run consumes the voice queue until ctx is cancelled or the broker drops
// the delivery channel.
func (w *VoiceWorker) Run(ctx context.Context) error {
	w.logger.WithFields(logrus.Fields{
		"queue":  w.voiceQueue,
		"output": w.feedbackQueue,
	}).Info("🚀 Starting voice worker")

	return w.broker.Consume(ctx, w.voiceQueue, w.HandleMessage)
}

// HandleMessage processes one upload message. A nil return acks it; publish
// failures are marked for requeue so a result is never lost after the
// message is acknowledged.
func (w *VoiceWorker) HandleMessage(ctx context.Context, body []byte) error {
	var msg models.UploadMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		metrics.WorkerMessages.WithLabelValues(metrics.OutcomeFailed).Inc()
		return fmt.Errorf("failed to decode upload message: %w", err)
	}

	log := w.logger.WithFields(logrus.Fields{
		"upload_id": msg.ID,
		"file":      msg.Filename,
	})
	log.Info("📥 Received voice upload")

	if msg.Filepath == "" {
		log.Warn("⚠️  Upload message has no filepath, skipping")
		metrics.WorkerMessages.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return nil
	}

	start := time.Now()
	audio, err := w.storage.Open(ctx, msg.Filepath)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			log.WithField("filepath", msg.Filepath).Warn("⚠️  File not found, skipping")
			metrics.WorkerMessages.WithLabelValues(metrics.OutcomeSkipped).Inc()
			return nil
		}
		metrics.WorkerMessages.WithLabelValues(metrics.OutcomeFailed).Inc()
		return fmt.Errorf("failed to open %s: %w", msg.Filepath, err)
	}

	name := msg.Filename
	if name == "" {
		name = filepath.Base(msg.Filepath)
	}
	transcript, err := w.analyzer.Transcribe(ctx, name, audio)
	audio.Close()
	metrics.ObserveStage("transcribe", start)
	if err != nil {
		metrics.WorkerMessages.WithLabelValues(metrics.OutcomeFailed).Inc()
		return err
	}
	log.WithField("stage", "transcribed").Debug("🗣️  Transcription ready")

	start = time.Now()
	analysis, err := w.analyzer.Analyze(ctx, transcript)
	metrics.ObserveStage("analyze", start)
	if err != nil {
		metrics.WorkerMessages.WithLabelValues(metrics.OutcomeFailed).Inc()
		return err
	}
	if analysis.Degraded {
		log.Warn("⚠️  Scoring response was not valid JSON, publishing degraded analysis")
	}

	result := models.ResultMessage{
		OriginalName:  msg.Filename,
		Filepath:      msg.Filepath,
		Transcription: transcript,
		Analysis:      analysis,
		Metadata:      models.ResultMetadata{Size: msg.Size},
	}

	start = time.Now()
	err = w.broker.Publish(ctx, w.feedbackQueue, result)
	metrics.ObserveStage("publish", start)
	if err != nil {
		metrics.WorkerMessages.WithLabelValues(metrics.OutcomeRequeued).Inc()
		return Requeue(fmt.Errorf("failed to publish result: %w", err))
	}

	metrics.WorkerMessages.WithLabelValues(metrics.OutcomePublished).Inc()
	log.WithField("queue", w.feedbackQueue).Info("✅ Result published")
	return nil
}

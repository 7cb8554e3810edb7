package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"linguamentor/backend/internal/metrics"
	"linguamentor/backend/internal/models"
	"linguamentor/backend/internal/repositories"
)

// ResultConsumer stores every result message it receives as a new
// evaluation document.
type ResultConsumer struct {
	broker        Broker
	evalRepo      repositories.EvaluationRepository
	feedbackQueue string
	logger        logrus.FieldLogger
	now           func() time.Time
}

func NewResultConsumer(
	broker Broker,
	evalRepo repositories.EvaluationRepository,
	feedbackQueue string,
	logger logrus.FieldLogger,
) *ResultConsumer {
	return &ResultConsumer{
		broker:        broker,
		evalRepo:      evalRepo,
		feedbackQueue: feedbackQueue,
		logger:        logger,
		now:           time.Now,
	}
}

func (r *ResultConsumer) Run(ctx context.Context) error {
	r.logger.WithField("queue", r.feedbackQueue).Info("🚀 Starting evaluation consumer")
	return r.broker.Consume(ctx, r.feedbackQueue, r.HandleMessage)
}

// HandleMessage decodes and inserts one result. Insert failures are returned
// without the requeue marker, so the message is dropped.
func (r *ResultConsumer) HandleMessage(ctx context.Context, body []byte) error {
	var msg models.ResultMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		metrics.EvaluationsStored.WithLabelValues(metrics.OutcomeFailed).Inc()
		return fmt.Errorf("failed to decode result message: %w", err)
	}

	eval := &models.Evaluation{
		ResultMessage: msg,
		CreatedAt:     r.now().UTC(),
	}
	if err := r.evalRepo.Create(ctx, eval); err != nil {
		metrics.EvaluationsStored.WithLabelValues(metrics.OutcomeFailed).Inc()
		return err
	}

	metrics.EvaluationsStored.WithLabelValues(metrics.OutcomeStored).Inc()
	r.logger.WithFields(logrus.Fields{
		"evaluation_id": eval.ID.Hex(),
		"file":          msg.OriginalName,
	}).Info("💾 Evaluation stored")
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguamentor/backend/internal/models"
)

type fakeAcknowledger struct {
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked = append(f.nacked, tag)
	f.requeue = append(f.requeue, requeue)
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func TestHandleDeliverySettlement(t *testing.T) {
	logger, _ := test.NewNullLogger()

	tests := []struct {
		name        string
		handlerErr  error
		cancelled   bool
		wantAck     bool
		wantRequeue bool
	}{
		{name: "success acks", handlerErr: nil, wantAck: true},
		{name: "plain error drops", handlerErr: errors.New("transcription failed"), wantAck: false, wantRequeue: false},
		{name: "requeue error requeues", handlerErr: Requeue(errors.New("publish failed")), wantAck: false, wantRequeue: true},
		{name: "wrapped requeue error requeues", handlerErr: fmt.Errorf("outer: %w", Requeue(errors.New("publish failed"))), wantAck: false, wantRequeue: true},
		{name: "error during shutdown requeues", handlerErr: fmt.Errorf("failed to transcribe audio: %w", context.Canceled), cancelled: true, wantAck: false, wantRequeue: true},
		{name: "success during shutdown acks", handlerErr: nil, cancelled: true, wantAck: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			d := amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: []byte(`{}`)}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancelled {
				cancel()
			}

			var seen []byte
			handleDelivery(ctx, d, func(ctx context.Context, body []byte) error {
				seen = body
				return tt.handlerErr
			}, logger)

			assert.Equal(t, []byte(`{}`), seen)
			if tt.wantAck {
				assert.Equal(t, []uint64{7}, ack.acked)
				assert.Empty(t, ack.nacked)
				return
			}
			assert.Empty(t, ack.acked)
			assert.Equal(t, []uint64{7}, ack.nacked)
			assert.Equal(t, []bool{tt.wantRequeue}, ack.requeue)
		})
	}
}

func TestRequeue(t *testing.T) {
	assert.Nil(t, Requeue(nil))

	cause := errors.New("boom")
	err := Requeue(cause)
	assert.True(t, IsRequeue(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "boom", err.Error())
	assert.False(t, IsRequeue(cause))
}

func TestWorkerMessageRequeuedOnShutdown(t *testing.T) {
	logger, _ := test.NewNullLogger()
	broker := &fakeBroker{}
	worker, dir := newTestWorker(t, &fakeProvider{transcribeErr: context.Canceled}, broker)
	path := filepath.Join(dir, "a.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ack := &fakeAcknowledger{}
	d := amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		Body:         uploadBody(t, models.UploadMessage{Filename: "a.wav", Filepath: path}),
	}
	handleDelivery(ctx, d, worker.HandleMessage, logger)

	assert.Empty(t, ack.acked)
	assert.Equal(t, []bool{true}, ack.requeue)
	assert.Empty(t, broker.messages)
}

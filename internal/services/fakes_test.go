package services

import (
	"context"
	"io"
	"sync"
)

type fakeProvider struct {
	transcript    string
	transcribeErr error
	response      string
	generateErr   error

	mu       sync.Mutex
	prompts  []string
	options  []GenerateOptions
	filename string
	audio    []byte
}

func (f *fakeProvider) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	data, _ := io.ReadAll(audio)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.filename = filename
	f.audio = data
	return f.transcript, f.transcribeErr
}

func (f *fakeProvider) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.options = append(f.options, opts)
	return f.response, f.generateErr
}

type published struct {
	queue   string
	payload interface{}
}

type fakeBroker struct {
	err      error
	messages []published
	consumed []string
}

func (f *fakeBroker) Publish(ctx context.Context, queue string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{queue: queue, payload: payload})
	return nil
}

func (f *fakeBroker) Consume(ctx context.Context, queue string, handler MessageHandler) error {
	f.consumed = append(f.consumed, queue)
	return nil
}

func (f *fakeBroker) Close() error { return nil }

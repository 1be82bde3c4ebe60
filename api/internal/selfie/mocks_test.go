package selfie

import (
	"context"
	"sync"

	"persona-selfie/api/internal/gradio"
	"persona-selfie/api/internal/llm"
	"persona-selfie/api/internal/store"
)

type mockCompleter struct {
	complete func(p llm.Prompt) (string, error)
}

func (m *mockCompleter) Name() string { return "mock" }

func (m *mockCompleter) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	return m.complete(p)
}

type mockBackend struct {
	mu       sync.Mutex
	inputs   []gradio.FaceIDInput
	generate func(ctx context.Context, in gradio.FaceIDInput) ([]byte, error)
}

func (m *mockBackend) Generate(ctx context.Context, in gradio.FaceIDInput) ([]byte, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()
	return m.generate(ctx, in)
}

type mockLedger struct {
	mu      sync.Mutex
	records []store.Record
	err     error
}

func (m *mockLedger) Insert(ctx context.Context, rec store.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return m.err
}

type mockPublisher struct {
	mu   sync.Mutex
	pubs []Publication
	err  error
}

func (m *mockPublisher) Publish(ctx context.Context, p Publication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pubs = append(m.pubs, p)
	return m.err
}

package scene

import (
	"context"
	"sync"

	"persona-selfie/api/internal/llm"
)

// mockCompleter: llm.Completer с подменяемым поведением.
type mockCompleter struct {
	mu       sync.Mutex
	prompts  []llm.Prompt
	complete func(p llm.Prompt) (string, error)
}

func (m *mockCompleter) Name() string { return "mock" }

func (m *mockCompleter) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, p)
	m.mu.Unlock()
	if m.complete != nil {
		return m.complete(p)
	}
	return "", nil
}

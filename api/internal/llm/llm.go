package llm

import "context"

// Prompt: один запрос к текстовой модели.
type Prompt struct {
	System    string
	User      string
	MaxTokens int32 // 0: без ограничения
	JSON      bool  // просим строго JSON (response mime application/json)
}

// Completer is a text-completion backend.
type Completer interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, error)
}

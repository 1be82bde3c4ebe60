package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"persona-selfie/api/internal/llm"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Engine talks to Gemini through one shared client.
type Engine struct {
	Model string
	cl    *genai.Client
}

func New(ctx context.Context, apiKey, model string) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Engine{Model: strings.TrimSpace(model), cl: cl}, nil
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) Close() error { return e.cl.Close() }

func (e *Engine) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	m := e.cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	configure(m, p)

	resp, err := m.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	txt := firstText(resp)
	if txt == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return strings.TrimSpace(txt), nil
}

func configure(m *genai.GenerativeModel, p llm.Prompt) {
	m.GenerationConfig = genai.GenerationConfig{}
	if p.MaxTokens > 0 {
		m.SetMaxOutputTokens(p.MaxTokens)
	}
	if p.JSON {
		m.ResponseMIMEType = "application/json"
	}
	if s := strings.TrimSpace(p.System); s != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s)}}
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

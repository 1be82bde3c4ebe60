package scene

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"persona-selfie/api/internal/llm"
	"persona-selfie/api/internal/util"

	"go.uber.org/zap"
)

// Context: структурированное описание сцены для генерации.
type Context struct {
	Emotion  string `json:"emotion,omitempty"`
	Location string `json:"location,omitempty"`
	Action   string `json:"action,omitempty"`
}

// Default is used whenever the scene cannot be extracted.
var Default = Context{
	Emotion:  "neutral",
	Location: "a room",
	Action:   "looking at the camera",
}

const (
	DefaultUsername  = "User"
	reactionMaxToken = 50
)

// Message is the part of an incoming request the extractor cares about.
type Message struct {
	Text                 string
	Username             string
	PreviousConversation string
}

// Extractor never fails: LLM errors degrade to deterministic fallbacks.
type Extractor struct {
	llm     llm.Completer
	log     *zap.Logger
	timeout time.Duration
}

func NewExtractor(c llm.Completer, log *zap.Logger, timeout time.Duration) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{llm: c, log: log, timeout: timeout}
}

func (e *Extractor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

// FallbackReaction: что возвращаем, если модель не ответила.
func FallbackReaction(name, message string) string {
	return fmt.Sprintf("%s is thinking about the message: '%s'", name, message)
}

func reactionSystem(name string, m Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Briefly react to the user's message in a way that reveals emotion.", name)
	if u := strings.TrimSpace(m.Username); u != "" && u != DefaultUsername {
		fmt.Fprintf(&b, " The user's name is %s.", u)
	}
	if pc := strings.TrimSpace(m.PreviousConversation); pc != "" {
		fmt.Fprintf(&b, "\n\nConversation so far:\n%s", pc)
	}
	return b.String()
}

// Reaction asks the persona to react to the message.
func (e *Extractor) Reaction(ctx context.Context, name string, m Message) string {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	out, err := e.llm.Complete(ctx, llm.Prompt{
		System:    reactionSystem(name, m),
		User:      m.Text,
		MaxTokens: reactionMaxToken,
	})
	if err == nil {
		out = strings.TrimSpace(out)
	}
	if err != nil || out == "" {
		e.log.Warn("reaction call failed, using fallback",
			zap.String("engine", e.llm.Name()), zap.String("persona", name), zap.Error(err))
		return FallbackReaction(name, m.Text)
	}
	return out
}

func scenePrompt(text string) string {
	return fmt.Sprintf(`Analyze the following text and describe the scene in simple terms.
Text: "%s"
Respond ONLY with a JSON object with keys "emotion", "location", and "action".
Example: {"emotion": "happy and smiling", "location": "at a bustling cafe", "action": "sipping a coffee"}`, text)
}

// Scene turns a reaction into emotion/location/action.
// A valid object replaces Default entirely, even when keys are missing.
func (e *Extractor) Scene(ctx context.Context, text string) Context {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	out, err := e.llm.Complete(ctx, llm.Prompt{User: scenePrompt(text), JSON: true})
	if err != nil {
		e.log.Warn("context extraction failed, using defaults",
			zap.String("engine", e.llm.Name()), zap.Error(err))
		return Default
	}
	sc, err := Parse(out)
	if err != nil {
		e.log.Warn("context extraction failed, using defaults",
			zap.String("engine", e.llm.Name()), zap.String("raw", out), zap.Error(err))
		return Default
	}
	return sc
}

// Parse decodes the model output; anything but a JSON object with string values is an error.
func Parse(raw string) (Context, error) {
	raw = util.StripCodeFences(raw)
	if !strings.HasPrefix(raw, "{") {
		return Context{}, fmt.Errorf("bad scene JSON: not an object")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	var sc Context
	if err := dec.Decode(&sc); err != nil {
		return Context{}, fmt.Errorf("bad scene JSON: %w", err)
	}
	if dec.More() {
		return Context{}, fmt.Errorf("bad scene JSON: trailing data")
	}
	return sc, nil
}

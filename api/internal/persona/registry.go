package persona

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrUnknownBot = errors.New("unknown bot")

//go:embed bots.json
var defaultBots []byte

// Persona: персонаж с фиксированным фото и шаблоном промпта.
type Persona struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

type Registry struct {
	bots map[string]Persona
}

// NewRegistry builds a registry; empty names are derived from the id.
func NewRegistry(list []Persona) (*Registry, error) {
	r := &Registry{bots: make(map[string]Persona, len(list))}
	for _, p := range list {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, errors.New("persona with empty id")
		}
		if _, dup := r.bots[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			p.Name = DisplayName(p.ID)
		}
		r.bots[p.ID] = p
	}
	return r, nil
}

// Load reads the registry from path, or the embedded default when path is empty.
func Load(path string) (*Registry, error) {
	raw := defaultBots
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read bots file: %w", err)
		}
		raw = b
	}
	var list []Persona
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("bad bots json: %w", err)
	}
	return NewRegistry(list)
}

func (r *Registry) Lookup(id string) (Persona, error) {
	p, ok := r.bots[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownBot, id)
	}
	return p, nil
}

func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.bots))
	for id := range r.bots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int { return len(r.bots) }

// DisplayName: "delhi_mentor_male" -> "Delhi Mentor Male".
func DisplayName(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}

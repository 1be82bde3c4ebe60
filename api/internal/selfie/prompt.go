package selfie

import (
	"fmt"
	"strings"

	"persona-selfie/api/internal/scene"
)

const NegativePrompt = "nsfw, low quality, deformed, ugly"

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// BuildPrompt renders the generation prompt for a persona in a scene.
func BuildPrompt(name string, sc scene.Context) string {
	return fmt.Sprintf(
		"Close-up portrait of a person who looks like the reference image, with a %s expression, %s, at %s. "+
			"The person's name is %s. Ultra-detailed, dslr quality, cinematic photo.",
		orDefault(sc.Emotion, "neutral expression"),
		orDefault(sc.Action, "looking at the camera"),
		orDefault(sc.Location, "a neutral background"),
		name,
	)
}

package generation

import (
	"strings"

	"github.com/trendfarm/internal/theme"
)

var (
	baseEnhancements = []string{
		"full body character",
		"centered composition",
		"detailed textures",
		"high quality 3D render style",
	}
	tPoseEnhancements = []string{
		"T-pose stance",
		"arms extended horizontally",
		"standing upright",
	}
)

const promptSuffix = "white background, studio lighting"

// EnhancePrompt appends the character phrases, the T-pose phrases when
// requested, and the phrases of the prompt's theme
func EnhancePrompt(prompt string, tPose bool) string {
	phrases := append([]string{}, baseEnhancements...)
	if tPose {
		phrases = append(phrases, tPoseEnhancements...)
	}
	phrases = append(phrases, theme.Classify(prompt).SuggestedEnhancements...)

	return strings.TrimSpace(prompt) + ", " + strings.Join(phrases, ", ") + ", " + promptSuffix
}

package generation

import (
	"testing"
)

func TestEnhancePrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		tPose  bool
		want   string
	}{
		{
			name:   "default theme without T-pose",
			prompt: "  a friendly baker  ",
			tPose:  false,
			want:   "a friendly baker, full body character, centered composition, detailed textures, high quality 3D render style, white background, studio lighting",
		},
		{
			name:   "cyberpunk with T-pose",
			prompt: "neon samurai",
			tPose:  true,
			want: "neon samurai, full body character, centered composition, detailed textures, high quality 3D render style, " +
				"T-pose stance, arms extended horizontally, standing upright, " +
				"glowing neon accents, metallic textures, holographic effects, white background, studio lighting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhancePrompt(tt.prompt, tt.tPose)
			if got != tt.want {
				t.Errorf("EnhancePrompt(%q, %v) =\n%q\nwant\n%q", tt.prompt, tt.tPose, got, tt.want)
			}
			if again := EnhancePrompt(tt.prompt, tt.tPose); again != got {
				t.Error("EnhancePrompt is not deterministic")
			}
		})
	}
}

package theme

import (
	"strings"

	"github.com/trendfarm/internal/models"
)

// Theme names
const (
	Cyberpunk = "cyberpunk"
	Fantasy   = "fantasy"
	SciFi     = "scifi"
	Horror    = "horror"
	Default   = "default"
)

// Definition is the keyword list and scene bundle for one theme
type Definition struct {
	Name         string
	Keywords     []string
	Environment  models.Environment
	Enhancements []string
}

// Priority is the scoring order. On equal scores the earlier theme wins.
var Priority = []string{Cyberpunk, Fantasy, SciFi, Horror}

var definitions = map[string]Definition{
	Cyberpunk: {
		Name:     Cyberpunk,
		Keywords: []string{"cyber", "punk", "neon", "tech", "futuristic", "robot", "android", "synthetic", "chrome", "hologram"},
		Environment: models.Environment{
			SkyboxColor: "#1a0033",
			GroundColor: "#0a0a0a",
			FogColor:    "#ff00ff",
			FogDensity:  0.02,
			Lights: []models.Light{
				{Type: "point", Color: "#ff00ff", Intensity: 2, Position: []float64{5, 5, 5}},
				{Type: "point", Color: "#00ffff", Intensity: 2, Position: []float64{-5, 5, -5}},
				{Type: "ambient", Color: "#220044", Intensity: 0.3},
			},
			Particles: true,
			GridColor: "#ff00ff",
		},
		Enhancements: []string{"glowing neon accents", "metallic textures", "holographic effects"},
	},
	Fantasy: {
		Name:     Fantasy,
		Keywords: []string{"wizard", "mage", "elf", "dwarf", "orc", "dragon", "knight", "magic", "sword", "armor", "medieval"},
		Environment: models.Environment{
			SkyboxColor: "#87CEEB",
			GroundColor: "#3a5f3a",
			FogColor:    "#e6f3ff",
			FogDensity:  0.01,
			Lights: []models.Light{
				{Type: "point", Color: "#ffd700", Intensity: 1.5, Position: []float64{10, 10, 10}},
				{Type: "point", Color: "#9370db", Intensity: 1, Position: []float64{-5, 3, 5}},
				{Type: "ambient", Color: "#f0e68c", Intensity: 0.4},
			},
			Particles: false,
			GridColor: "#8b7355",
		},
		Enhancements: []string{"magical aura", "ancient runes", "mystical glow"},
	},
	SciFi: {
		Name:     SciFi,
		Keywords: []string{"space", "alien", "astronaut", "spaceship", "laser", "plasma", "quantum", "galactic"},
		Environment: models.Environment{
			SkyboxColor: "#000033",
			GroundColor: "#1a1a2e",
			FogColor:    "#0066cc",
			FogDensity:  0.015,
			Lights: []models.Light{
				{Type: "point", Color: "#00ccff", Intensity: 2, Position: []float64{0, 10, 0}},
				{Type: "point", Color: "#ff6600", Intensity: 1.5, Position: []float64{8, 5, -8}},
				{Type: "ambient", Color: "#001133", Intensity: 0.2},
			},
			Particles: true,
			GridColor: "#0066cc",
		},
		Enhancements: []string{"energy shields", "plasma effects", "advanced technology"},
	},
	Horror: {
		Name:     Horror,
		Keywords: []string{"zombie", "vampire", "monster", "demon", "ghost", "undead", "dark", "evil", "creepy"},
		Environment: models.Environment{
			SkyboxColor: "#0a0a0a",
			GroundColor: "#1a0000",
			FogColor:    "#660000",
			FogDensity:  0.03,
			Lights: []models.Light{
				{Type: "point", Color: "#ff0000", Intensity: 1, Position: []float64{0, 2, 5}},
				{Type: "point", Color: "#800080", Intensity: 0.5, Position: []float64{-3, 1, -3}},
				{Type: "ambient", Color: "#1a0000", Intensity: 0.2},
			},
			Particles: false,
			GridColor: "#330000",
		},
		Enhancements: []string{"dark shadows", "eerie atmosphere", "weathered textures"},
	},
	Default: {
		Name: Default,
		Environment: models.Environment{
			SkyboxColor: "#ffffff",
			GroundColor: "#f0f0f0",
			FogColor:    "#ffffff",
			FogDensity:  0.005,
			Lights: []models.Light{
				{Type: "directional", Color: "#ffffff", Intensity: 0.8, Position: []float64{10, 20, 10}},
				{Type: "ambient", Color: "#ffffff", Intensity: 0.3},
			},
			Particles: false,
			GridColor: "#cccccc",
		},
		Enhancements: []string{},
	},
}

// Score counts the keywords of theme found in prompt, case-insensitively
func Score(name, prompt string) int {
	def, ok := definitions[name]
	if !ok {
		return 0
	}
	lower := strings.ToLower(prompt)
	score := 0
	for _, kw := range def.Keywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	return score
}

// Classify picks the theme with the highest positive keyword score, or
// default when nothing matches. The returned slices are copies.
func Classify(prompt string) models.ThemeAnalysis {
	best, bestScore := Default, 0
	for _, name := range Priority {
		if s := Score(name, prompt); s > bestScore {
			best, bestScore = name, s
		}
	}

	def := definitions[best]
	env := def.Environment
	env.Lights = make([]models.Light, len(def.Environment.Lights))
	for i, l := range def.Environment.Lights {
		l.Position = append([]float64(nil), l.Position...)
		env.Lights[i] = l
	}

	return models.ThemeAnalysis{
		Theme:                 best,
		Environment:           env,
		SuggestedEnhancements: append([]string{}, def.Enhancements...),
	}
}

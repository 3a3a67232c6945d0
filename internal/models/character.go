package models

// Light is one light in a scene environment
type Light struct {
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	Intensity float64   `json:"intensity"`
	Position  []float64 `json:"position,omitempty"`
}

// Environment is the scene parameter bundle attached to a theme
type Environment struct {
	SkyboxColor string  `json:"skybox_color"`
	GroundColor string  `json:"ground_color"`
	FogColor    string  `json:"fog_color"`
	FogDensity  float64 `json:"fog_density"`
	Lights      []Light `json:"lights"`
	Particles   bool    `json:"particles"`
	GridColor   string  `json:"grid_color"`
}

// ThemeAnalysis is the classifier output for a prompt
type ThemeAnalysis struct {
	Theme                 string      `json:"primary_theme"`
	Environment           Environment `json:"environment_params"`
	SuggestedEnhancements []string    `json:"suggested_enhancements"`
}

// RigResult describes the rigging step. The model is returned unrigged
// with the skeleton a downstream tool would need.
type RigResult struct {
	Rigged          bool     `json:"rigged"`
	MethodRequested string   `json:"method_requested"`
	BonesNeeded     []string `json:"bones_needed"`
	Message         string   `json:"message"`
}

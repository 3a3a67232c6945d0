package generation

import (
	"context"
	"fmt"

	"github.com/trendfarm/internal/models"
	"github.com/trendfarm/internal/theme"
)

// Character is the output of the full text-to-character pipeline
type Character struct {
	Theme models.ThemeAnalysis
	Image *ImageResult
	Model *ModelResult
	Rig   *RigOutput
}

// CharacterPipeline classifies the prompt, renders an enhanced T-pose
// image, converts it to 3D and prepares it for rigging
func (g *Generator) CharacterPipeline(ctx context.Context, prompt string) (*Character, error) {
	analysis := theme.Classify(prompt)
	g.log.Info().Str("theme", analysis.Theme).Msg("Starting character pipeline")

	img, err := g.GenerateImage(ctx, prompt, true, true)
	if err != nil {
		return nil, fmt.Errorf("pipeline failed: %w", err)
	}

	model, err := g.ConvertTo3D(ctx, img.Image)
	if err != nil {
		return nil, fmt.Errorf("pipeline failed: %w", err)
	}

	rig, err := Rig(model.GLB, RigAuto)
	if err != nil {
		return nil, fmt.Errorf("pipeline failed: %w", err)
	}

	return &Character{Theme: analysis, Image: img, Model: model, Rig: rig}, nil
}

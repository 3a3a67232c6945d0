package generation

import (
	"errors"
	"fmt"

	"github.com/trendfarm/internal/models"
)

// Rigging methods
const (
	RigAuto   = "auto"
	RigMixamo = "mixamo"
)

// ErrInvalidRigMethod is returned for a rigging method other than auto or mixamo
var ErrInvalidRigMethod = errors.New("rigging method must be auto or mixamo")

// Skeleton lists the bones a humanoid rig needs
var Skeleton = []string{
	"root", "spine", "chest", "neck", "head",
	"shoulder_l", "arm_l", "forearm_l", "hand_l",
	"shoulder_r", "arm_r", "forearm_r", "hand_r",
	"thigh_l", "shin_l", "foot_l",
	"thigh_r", "shin_r", "foot_r",
}

const (
	rigMetadataMessage = "Model prepared for rigging. Use Mixamo or Blender for actual rigging."
	RigMessage         = "Model ready for rigging. Upload to Mixamo.com for free auto-rigging."
)

// RigOutput is the unchanged model plus the rigging metadata
type RigOutput struct {
	GLB      []byte
	Metadata models.RigResult
	Message  string
}

// Rig prepares glb for rigging. No skeleton is added: the model is passed
// back unchanged with the bones a rigging tool has to create.
func Rig(glb []byte, method string) (*RigOutput, error) {
	if method == "" {
		method = RigAuto
	}
	if method != RigAuto && method != RigMixamo {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRigMethod, method)
	}
	if len(glb) == 0 {
		return nil, fmt.Errorf("model is empty")
	}

	return &RigOutput{
		GLB: glb,
		Metadata: models.RigResult{
			Rigged:          false,
			MethodRequested: method,
			BonesNeeded:     append([]string{}, Skeleton...),
			Message:         rigMetadataMessage,
		},
		Message: RigMessage,
	}, nil
}

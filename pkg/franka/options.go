package franka

import (
	"github.com/articulated-robotics/go-franka/pkg/protocol"
	"github.com/articulated-robotics/go-franka/pkg/transform"
)

// gainDim is the length of a stiffness or damping vector:
// 3 translational + 3 rotational gains.
const gainDim = 6

// Default command parameters.
var (
	// DefaultStiffness is applied when a command supplies no
	// stiffness vector (N/m for translation, Nm/rad for rotation).
	DefaultStiffness = []float64{150, 150, 150, 10, 10, 10}

	// DefaultDamping is applied when a command supplies no damping
	// vector.
	DefaultDamping = []float64{30, 30, 30, 8, 8, 8}
)

const (
	// DefaultForceBound is the end-effector force limit in Newtons.
	DefaultForceBound = 50.0

	// DefaultTorqueBound is the end-effector torque limit in
	// Newton-meters.
	DefaultTorqueBound = 4.0
)

// CommandOptions enumerates every recognized regulation parameter.
// Every field set here is consumed; zero values fall back to the
// package defaults above.
type CommandOptions struct {
	// Stiffness holds 3 translational + 3 rotational gains.
	// Nil selects DefaultStiffness; any other length is rejected.
	Stiffness []float64

	// Damping holds 3 translational + 3 rotational gains.
	// Nil selects DefaultDamping; any other length is rejected.
	Damping []float64

	// ForceBound limits end-effector control force in Newtons.
	// Zero selects DefaultForceBound.
	ForceBound float64

	// TorqueBound limits end-effector control torque in Newton-meters.
	// Zero selects DefaultTorqueBound.
	TorqueBound float64
}

// buildConfig validates the options and assembles the wire payload for
// the given target pose. Validation failures happen before any request
// is sent.
func (o CommandOptions) buildConfig(target transform.Transform) (protocol.RegulationConfig, error) {
	stiffness := o.Stiffness
	if stiffness == nil {
		stiffness = DefaultStiffness
	} else if len(stiffness) != gainDim {
		return protocol.RegulationConfig{}, &GainError{Field: "stiffness", Len: len(stiffness)}
	}

	damping := o.Damping
	if damping == nil {
		damping = DefaultDamping
	} else if len(damping) != gainDim {
		return protocol.RegulationConfig{}, &GainError{Field: "damping", Len: len(damping)}
	}

	forceBound := o.ForceBound
	if forceBound == 0 {
		forceBound = DefaultForceBound
	}
	torqueBound := o.TorqueBound
	if torqueBound == 0 {
		torqueBound = DefaultTorqueBound
	}

	cfg := protocol.RegulationConfig{
		OTEeDesired: target.RowMajor(),
		Stiffness:   append([]float64(nil), stiffness...),
		Damping:     append([]float64(nil), damping...),
		ForceBound:  forceBound,
		TorqueBound: torqueBound,
	}
	return cfg, nil
}

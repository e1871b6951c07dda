package anim

import (
	"fmt"
	"strings"
)

// Interpolation selects how a channel is sampled between two keyframes.
type Interpolation uint8

const (
	Linear Interpolation = iota
	Step
	CubicSpline
)

// String returns the glTF name of the mode.
func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "LINEAR"
	case Step:
		return "STEP"
	case CubicSpline:
		return "CUBICSPLINE"
	default:
		return fmt.Sprintf("Interpolation(%d)", uint8(i))
	}
}

// ParseInterpolation parses a mode name case-insensitively. An empty name is Linear.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LINEAR":
		return Linear, nil
	case "STEP":
		return Step, nil
	case "CUBICSPLINE", "CUBIC":
		return CubicSpline, nil
	default:
		return Linear, fmt.Errorf("unknown interpolation %q", s)
	}
}

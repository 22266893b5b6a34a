package imageflow

import (
	"fmt"
	"math/rand"
)

var (
	errRadialGradientRadius = fmt.Errorf("imageflow: radial gradient radius must be > 0")
	errCheckerCellSize      = fmt.Errorf("imageflow: checker cell width and height must be > 0")
)

func newSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

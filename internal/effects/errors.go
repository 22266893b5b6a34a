package effects

import "errors"

var (
	errGamma       = errors.New("effects: gamma must be > 0")
	errLevelsRange = errors.New("effects: levels requires in_white > in_black")
	errLevelsGamma  = errors.New("effects: levels gamma must be > 0")
	errMorphologyOp = errors.New("effects: morphology op must be erode or dilate")
)

package ops

import "github.com/pkg/errors"

var (
	errMissingArcAngles  = errors.New("draw-arc requires start_rad/end_rad or start_deg/end_deg")
	errUnknownAction     = errors.New("Unknown op action")
	errEmitNotSupported  = errors.New("emit is not supported in this context")
	errEmitRequiresFile  = errors.New("emit requires file= (or out=)")
	errGradientLayerType = errors.New("gradient-layer type must be linear or radial")
)

package simplify

import (
	"github.com/dpup/prefab/errors"
	"google.golang.org/grpc/codes"
)

// ErrNoPointsInBounds is returned when the bounds filter leaves nothing to analyze
var ErrNoPointsInBounds = errors.NewC("no points found within specified bounds", codes.InvalidArgument)

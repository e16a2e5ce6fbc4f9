package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors: surfaced before any computation begins
	ErrInvalidConfig       = errors.New("invalid run configuration")
	ErrInsufficientMarkers = fmt.Errorf("%w: insufficient markers", ErrInvalidConfig)
	ErrNoParameters        = fmt.Errorf("%w: no requested parameters found in dataset", ErrInvalidConfig)

	// Partial parameter match is a policy decision left to the caller
	ErrPartialParameters = errors.New("some requested parameters were not found")

	// Data-shape violations abort the run
	ErrMalformedDataset = errors.New("malformed dataset")
	ErrMarkerNotFound   = fmt.Errorf("%w: marker not found", ErrMalformedDataset)
)

// NewMarkerNotFoundError reports a requested marker that has no marker row
func NewMarkerNotFoundError(marker string) error {
	return fmt.Errorf("%w: %s", ErrMarkerNotFound, marker)
}

// NewMalformedError reports a structural problem in the input table
func NewMalformedError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedDataset, fmt.Sprintf(format, args...))
}

// NewPartialParametersError lists the requested parameters that matched nothing
func NewPartialParametersError(missing []string) error {
	return fmt.Errorf("%w: %v", ErrPartialParameters, missing)
}

// IsConfigurationError reports whether err should be surfaced as a configuration problem
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrPartialParameters)
}

// IsDataShapeError reports whether err is a structural violation of the input dataset
func IsDataShapeError(err error) bool {
	return errors.Is(err, ErrMalformedDataset)
}

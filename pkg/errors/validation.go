package errors

import (
	"math"
	"strings"
)

// ValidateGraphSize validates an explicit graph size override.
//
// The validation rules are:
//   - Both dimensions must be finite numbers
//   - Both dimensions must be strictly positive
func ValidateGraphSize(width, height float64) error {
	if math.IsNaN(width) || math.IsNaN(height) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return New(ErrCodeInvalidSize, "graph size must be finite, got [%v, %v]", width, height)
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidSize, "graph size must be positive, got [%v, %v]", width, height)
	}
	return nil
}

// ValidateClusterSettings validates the paddings used by the clustered layout.
// Negative paddings would let clusters interpenetrate, so they are rejected.
func ValidateClusterSettings(clusterPadding, padding float64) error {
	if math.IsNaN(clusterPadding) || clusterPadding < 0 {
		return New(ErrCodeInvalidSettings, "clusterPadding must be non-negative, got %v", clusterPadding)
	}
	if math.IsNaN(padding) || padding < 0 {
		return New(ErrCodeInvalidSettings, "padding must be non-negative, got %v", padding)
	}
	return nil
}

// ValidateOpacity validates a dimmed opacity value.
// It must be visible (greater than zero) and distinguishable from full opacity.
func ValidateOpacity(v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return New(ErrCodeInvalidSettings, "dimmed opacity must be in (0, 1), got %v", v)
	}
	return nil
}

// ValidateFormat checks that format is one of the supported output formats.
func ValidateFormat(format string, supported []string) error {
	for _, f := range supported {
		if f == format {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", format, strings.Join(supported, ", "))
}

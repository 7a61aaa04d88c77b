package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Precondition violations
	ErrDuplicateIdentifier = errors.New("duplicate record id in batch")
	ErrUnsupportedModel    = errors.New("unsupported scanner model")

	// Internal-consistency faults
	ErrIdentifierRange = errors.New("record id outside sequence domain")

	// Reader-side failures
	ErrMalformedExport = errors.New("malformed CVR export")
)

// NewMalformedExportError wraps a source-specific parse failure with the
// file or member it came from.
func NewMalformedExportError(source string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedExport, source, reason)
}

// Error checking helpers
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrDuplicateIdentifier) ||
		errors.Is(err, ErrUnsupportedModel)
}

func IsMalformedExportError(err error) bool {
	return errors.Is(err, ErrMalformedExport)
}

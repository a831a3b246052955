package predict

import (
	"errors"
	"fmt"
)

// Sentinel kinds for prediction errors.
var (
	ErrModelInvocation = errors.New("model invocation failure")
	ErrModelNotFound   = errors.New("model artifact not found")
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

func wrapInvocation(name string, err error) error {
	if errors.Is(err, ErrModelInvocation) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrModelInvocation, name, err)
}

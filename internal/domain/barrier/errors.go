package barrier

import "errors"

// Sentinel kinds carried by Deliver panics.
var (
	ErrDoubleDelivery = errors.New("barrier: result delivered twice")
	ErrUnknownKey     = errors.New("barrier: unexpected key")
)

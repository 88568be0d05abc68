package simulation

import "errors"

var (
	// ErrUnknownTemplate means the template id is not in the catalogue.
	ErrUnknownTemplate = errors.New("simulation: unknown template")

	// ErrTrackingNotFound means no tracking record exists for the id.
	ErrTrackingNotFound = errors.New("simulation: tracking record not found")
)

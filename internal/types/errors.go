package types

import "errors"

// Pipeline error taxonomy. Services either surface these to the conversation
// layer as corrective prompts or absorb them into degraded output; raw
// technical errors never reach the user.
var (
	// ErrLocationNotFound indicates geocoding produced no match.
	ErrLocationNotFound = errors.New("location not found")
	// ErrInvalidCoordinate indicates a malformed or out-of-range coordinate pair.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrServiceUnavailable indicates a network/HTTP failure from an external dependency.
	ErrServiceUnavailable = errors.New("external service unavailable")
	// ErrNoRouteFound indicates the routing service returned an empty route list.
	ErrNoRouteFound = errors.New("no route found")
	// ErrFormatViolation indicates LLM output is missing required address/coordinate markers.
	ErrFormatViolation = errors.New("route format violation")
	// ErrEmptyCompletion indicates the LLM returned blank text.
	ErrEmptyCompletion = errors.New("empty completion")
)

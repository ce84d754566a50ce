package domain

import "errors"

var (
	// ErrInvalidIntent signals that extracted intent fields failed validation.
	ErrInvalidIntent = errors.New("invalid intent")
	// ErrProviderFailure signals a mapping-provider or LLM failure.
	ErrProviderFailure = errors.New("provider failure")
)

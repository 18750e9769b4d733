package llm

import (
	"context"
	"errors"
)

// Request carries one instruction for the generative-language backend.
type Request struct {
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
}

// Generator is the narrow boundary the pipeline depends on. Calls are
// synchronous and unretried; cancellation comes from the caller's
// context only.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrUnavailable is returned when no backend credential is configured.
// Stages with a documented fallback degrade on it; stages without one
// propagate it.
var ErrUnavailable = errors.New("llm: backend unavailable")

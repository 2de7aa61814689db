package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when the chat message is missing or empty,
	// or the requested mode is unknown.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable marks a reference document that does not exist.
	// DocumentCache treats it as an empty document rather than a failure.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrDownstreamFailure is matched by every DownstreamError.
	ErrDownstreamFailure = errors.New("downstream failure")
)

// Pipeline stages reported by DownstreamError
const (
	StageRetrieval = "retrieval"
	StageCompose   = "compose"
	StageModel     = "model"
	StageAgent     = "agent"
)

// DownstreamError wraps a failure from one stage of the chat pipeline.
type DownstreamError struct {
	Stage string
	Err   error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *DownstreamError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrDownstreamFailure) match any stage failure.
func (e *DownstreamError) Is(target error) bool {
	return target == ErrDownstreamFailure
}

func downstream(stage string, err error) error {
	return &DownstreamError{Stage: stage, Err: err}
}

func invalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

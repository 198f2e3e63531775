package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout matches any backend error caused by a deadline or client timeout.
var ErrTimeout = errors.New("backend timed out")

// GenerationError is returned by every Generator on a non-success response,
// a malformed payload or a timeout. Status is 0 when no response arrived.
type GenerationError struct {
	Backend string
	Status  int
	Body    string
	Timeout bool
	Err     error
}

func (e *GenerationError) Error() string {
	return describe("generation", e.Backend, e.Status, e.Body, e.Timeout, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}

// RepresentationError is returned by every Embedder when no trustworthy vector
// could be produced.
type RepresentationError struct {
	Backend string
	Status  int
	Body    string
	Timeout bool
	Err     error
}

func (e *RepresentationError) Error() string {
	return describe("embedding", e.Backend, e.Status, e.Body, e.Timeout, e.Err)
}

func (e *RepresentationError) Unwrap() error { return e.Err }

func (e *RepresentationError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}

func describe(kind, backend string, status int, body string, timeout bool, err error) string {
	switch {
	case timeout:
		return fmt.Sprintf("%s backend %s timed out: %v", kind, backend, err)
	case status != 0 && err != nil:
		return fmt.Sprintf("%s backend %s returned an unusable response (status %d): %v: %s", kind, backend, status, err, body)
	case status != 0:
		return fmt.Sprintf("%s backend %s returned status %d: %s", kind, backend, status, body)
	default:
		return fmt.Sprintf("%s backend %s failed: %v", kind, backend, err)
	}
}

func generationFailure(backend string, err error) *GenerationError {
	return &GenerationError{Backend: backend, Timeout: isTimeout(err), Err: err}
}

func representationFailure(backend string, err error) *RepresentationError {
	return &RepresentationError{Backend: backend, Timeout: isTimeout(err), Err: err}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

package app

import "errors"

var ErrInvalidInput = errors.New("invalid input")

// NotReadyError is returned by Ask before any document has been ingested.
type NotReadyError struct{}

func (e *NotReadyError) Error() string { return "no document has been ingested yet" }

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the submitted input is blank.
	ErrEmptyInput = errors.New("please enter a URL")

	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("a request is already in progress")

	// ErrInvalidBaseURL is returned for a service URL that is not absolute http(s).
	ErrInvalidBaseURL = errors.New("invalid service URL")
)

// DefaultFailureMessage is shown when the service fails without a detail.
const DefaultFailureMessage = "Analysis failed"

// ExportFailureMessage is shown when /export answers with a non-2xx status.
const ExportFailureMessage = "Export failed"

// ServiceError is a non-success answer from the analysis service.
// Message is the service's detail text, shown to the user verbatim.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NetworkError is a transport failure: the service could not be reached or
// the connection broke before a response arrived.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ExportError is any failure of the export round-trip.
type ExportError struct {
	Message string
	Err     error
}

func (e *ExportError) Error() string {
	return e.Message
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

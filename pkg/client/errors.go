package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrDecode is returned when a 200 response body is not a usable bank record.
	ErrDecode = errors.New("decode upstream body")

	// ErrInvalidConfig is returned by New for unusable configurations.
	ErrInvalidConfig = errors.New("invalid client config")
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassUnexpected represents any other non-200 status.
	ErrorClassUnexpected ErrorClass = "unexpected_status"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// UpstreamError describes why a remote source did not yield a record.
type UpstreamError struct {
	Address    string
	StatusCode int
	ErrorClass ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error (status %d) from %s: %v",
			e.ErrorClass, e.StatusCode, e.Address, e.Err)
	}
	return fmt.Sprintf("upstream %s error (status %d) from %s",
		e.ErrorClass, e.StatusCode, e.Address)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ClassifyStatus maps a non-200 status code to an error class.
// It returns an empty class for 200.
func ClassifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusOK:
		return ""
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}

// StatusError builds the UpstreamError for a non-200 response.
func StatusError(address string, statusCode int) error {
	return &UpstreamError{
		Address:    address,
		StatusCode: statusCode,
		ErrorClass: ClassifyStatus(statusCode),
	}
}

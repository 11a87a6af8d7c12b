package models

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrTransport      = errors.New("transport error")
	ErrResponseFormat = errors.New("invalid response")
	ErrBoardAccess    = errors.New("board access denied")
	ErrNoMatch        = errors.New("no matching lists")
)

// ConfigurationError is raised before any network call when credentials or
// the board ID are missing.
type ConfigurationError struct {
	Target string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("configuration error for list %q: %s", e.Target, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// TransportError is a non-2xx response or a failed round trip. Status is 0
// when no response was received. URL is always redacted.
type TransportError struct {
	Method  string
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	case e.Message != "":
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("HTTP %d: %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("HTTP %d", e.Status)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransport, e.Err}
	}
	return []error{ErrTransport}
}

// ResponseFormatError is a successful response whose body is not JSON.
type ResponseFormatError struct {
	URL string
	Err error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("invalid JSON response: %v", e.Err)
}

func (e *ResponseFormatError) Unwrap() []error {
	return []error{ErrResponseFormat, e.Err}
}

// AccessError reports that a board could not be read with the configured
// credentials, either because it does not exist or access was refused.
type AccessError struct {
	BoardID string
	Err     error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot access board %s: %v", e.BoardID, e.Err)
}

func (e *AccessError) Unwrap() []error {
	return []error{ErrBoardAccess, e.Err}
}

// NoMatchError is the soft failure of a pattern matching none of the lists
// on a board. Available carries every list name for diagnostics.
type NoMatchError struct {
	Pattern   string
	BoardID   string
	Available []string
}

func (e *NoMatchError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("no lists found on board %s", e.BoardID)
	}
	return fmt.Sprintf("no lists match pattern %q on board %s", e.Pattern, e.BoardID)
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}

// UserMessage turns an error into the short string shown in the panel menu.
func UserMessage(err error) string {
	var (
		cfgErr     *ConfigurationError
		noMatchErr *NoMatchError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return "Config Error: " + cfgErr.Reason
	case errors.As(err, &noMatchErr):
		if len(noMatchErr.Available) == 0 {
			return "No lists found on board"
		}
		return fmt.Sprintf("No lists match pattern %q", noMatchErr.Pattern)
	default:
		return "Error: " + rootMessage(err)
	}
}

// rootMessage strips the wrapping context down to the transport or format
// error, which carries the text worth showing.
func rootMessage(err error) string {
	var (
		transportErr *TransportError
		formatErr    *ResponseFormatError
	)
	if errors.As(err, &transportErr) {
		return transportErr.Error()
	}
	if errors.As(err, &formatErr) {
		return formatErr.Error()
	}
	return err.Error()
}

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptySuggestion is returned when a blank prompt template is suggested.
var ErrEmptySuggestion = errors.New("prompt template text is empty")

// ErrNoToken indicates the backend accepted credentials but returned no token.
var ErrNoToken = errors.New("the response did not contain a token")

// NetworkError indicates a transport failure or a non-success HTTP status.
type NetworkError struct {
	// Op names the call, e.g. "fetch next question".
	Op string

	// StatusCode is the HTTP status, 0 for transport failures.
	StatusCode int

	Err error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Status returns the HTTP status code, 0 for transport failures.
func (e *NetworkError) Status() int { return e.StatusCode }

// HTTPStatus returns the status code carried by err, or 0 if err is not a
// NetworkError with a status.
func HTTPStatus(err error) int {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	s := HTTPStatus(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

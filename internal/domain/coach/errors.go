package coach

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means no API key is available for the coach endpoint.
	ErrNotConfigured = errors.New("coach: api key not configured")
	// ErrEmptyResponse means the endpoint answered without any text.
	ErrEmptyResponse = errors.New("coach: empty response")
)

// RemoteServiceError is a non-success HTTP answer from the coach endpoint.
type RemoteServiceError struct {
	StatusCode int
	Body       string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("coach: remote service error: %d %s", e.StatusCode, e.Body)
}

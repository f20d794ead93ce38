package nhl

import (
	"errors"
	"fmt"
)

// Sentinel errors for the NHL adapter.
var (
	ErrDecode          = errors.New("decode response failed")
	ErrInvalidGameDate = errors.New("invalid game date")
)

// APIError is a non-2xx response from the upstream API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nhl api error %d: %s", e.StatusCode, e.Message)
}

package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrUnavailable marks a catalog call that failed in transport or
	// returned a non-success status after any retry.
	ErrUnavailable = errors.New("catalog unavailable")
	// ErrNotFound marks a catalog id the catalog does not know.
	ErrNotFound = errors.New("catalog movie not found")

	errRateLimited = errors.New("catalog rate limited")
)

// StatusError records a non-success catalog response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s returned %d (latency=%v)", e.Endpoint, e.StatusCode, e.Latency.Round(time.Millisecond))
}

// Is lets errors.Is map response codes onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case errRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnavailable:
		return e.StatusCode != http.StatusNotFound
	}
	return false
}

// ErrorKind classifies catalog errors for callers that report them.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "validation"
	}
}

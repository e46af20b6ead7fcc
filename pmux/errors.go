package pmux

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// RetryError is returned once all attempts for a request are exhausted
type RetryError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (re *RetryError) Error() string {
	if re.Err != nil {
		return fmt.Sprintf("giving up after %d attempt(s): %s", re.Attempts, re.Err)
	}
	return fmt.Sprintf("giving up after %d attempt(s): status %d", re.Attempts, re.StatusCode)
}

func (re *RetryError) Unwrap() error {
	return re.Err
}

func (re *RetryError) Apply(e *zerolog.Event) {
	e.Int("attempts", re.Attempts)
	if re.StatusCode > 0 {
		e.Int("status", re.StatusCode)
	}
}

// StatusError is returned for client or server error status, that is not retried
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (se *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", se.Status, se.Body)
}

func (se *StatusError) Apply(e *zerolog.Event) {
	e.Int("status", se.StatusCode)
}

// IsTimeout reports if the last failure of a request was a timeout
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

var sanitize = bluemonday.StrictPolicy()

func truncatedBody(body []byte) string {
	text := sanitize.SanitizeBytes(body)
	cutoff := 256
	if len(text) > cutoff {
		return string(text[:cutoff]) + fmt.Sprintf(" (%db more)", len(text)-cutoff)
	}
	return string(text)
}

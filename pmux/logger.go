package pmux

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// retryLogger forwards retryablehttp messages to the global zerolog logger,
// that is configured only after the client is created.
type retryLogger struct{}

func (retryLogger) event(e *zerolog.Event, msg string, kv []interface{}) {
	e.Fields(kv).Msg(msg)
}

func (l retryLogger) Error(msg string, kv ...interface{}) {
	// every failed attempt is reported as error, even if it's retried later
	l.event(log.Warn(), msg, kv)
}

func (l retryLogger) Info(msg string, kv ...interface{}) {
	l.event(log.Info(), msg, kv)
}

func (l retryLogger) Debug(msg string, kv ...interface{}) {
	l.event(log.Debug(), msg, kv)
}

func (l retryLogger) Warn(msg string, kv ...interface{}) {
	l.event(log.Warn(), msg, kv)
}

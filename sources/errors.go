package sources

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrNoTable means that page has no table to extract proxies from
var ErrNoTable = errors.New("no table found")

type errorContext interface {
	Apply(e *zerolog.Event)
}

type intEC struct {
	key   string
	value int
}

func (a intEC) Apply(e *zerolog.Event) {
	e.Int(a.key, a.value)
}

type strEC struct {
	key   string
	value string
}

func (a strEC) Apply(e *zerolog.Event) {
	e.Str(a.key, a.value)
}

type sourceError struct {
	err    error
	fields []errorContext
}

func (se sourceError) Error() string {
	ctx := se.err.Error()
	for _, v := range se.fields {
		switch x := v.(type) {
		case intEC:
			ctx = fmt.Sprintf("%s %s=%d", ctx, x.key, x.value)
		case strEC:
			ctx = fmt.Sprintf("%s %s=%s", ctx, x.key, x.value)
		}
	}
	return ctx
}

func (se sourceError) Unwrap() error {
	return se.err
}

// Apply adds error context to a log event
func (se sourceError) Apply(e *zerolog.Event) {
	for _, v := range se.fields {
		v.Apply(e)
	}
}

func wrapError(err error, ctx ...errorContext) sourceError {
	var se sourceError
	if errors.As(err, &se) {
		se.fields = append(se.fields, ctx...)
		return se
	}
	return sourceError{
		err:    err,
		fields: ctx,
	}
}

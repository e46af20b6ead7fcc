package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.DurationFieldUnit = time.Second
}

// Log carries zerolog.Logger through context.Context
var Log passLogger

type passLogger struct{}

func (l passLogger) From(ctx context.Context) zerolog.Logger {
	logger, ok := ctx.Value(l).(zerolog.Logger)
	if !ok {
		return log.Logger
	}
	return logger
}

func (l passLogger) To(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, l, log)
}

func (l passLogger) Nest(ctx context.Context, cb func(zc zerolog.Context) zerolog.Context) context.Context {
	log := l.From(ctx)
	zc := cb(log.With())
	return l.To(ctx, zc.Logger())
}

func (l passLogger) WithStringer(ctx context.Context, key string, value fmt.Stringer) context.Context {
	return l.Nest(ctx, func(zc zerolog.Context) zerolog.Context {
		return zc.Stringer(key, value)
	})
}

func (l passLogger) WithStr(ctx context.Context, key, value string) context.Context {
	return l.Nest(ctx, func(zc zerolog.Context) zerolog.Context {
		return zc.Str(key, value)
	})
}

func (l passLogger) WithInt(ctx context.Context, key string, value int) context.Context {
	return l.Nest(ctx, func(zc zerolog.Context) zerolog.Context {
		return zc.Int(key, value)
	})
}

var levels = map[string]zerolog.Level{
	"trace": zerolog.TraceLevel,
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
}

func initLogging(conf Config) {
	level, ok := levels[conf.StrOr("level", "info")]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	switch conf.StrOr("format", "pretty") {
	case "pretty":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	case "json":
		log.Logger = log.Output(os.Stdout)
	case "file":
		lb := &lumberjack.Logger{
			Filename:   conf.StrOr("file", "$PWD/$APP.log"),
			MaxSize:    conf.IntOr("max_size", 10),
			MaxBackups: conf.IntOr("max_backups", 0),
		}
		log.Logger = log.Output(lb)
	default:
		log.Warn().Str("format", conf.StrOr("format", "")).Msg("unknown log format")
	}
}

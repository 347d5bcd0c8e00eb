package models

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// dbLogger bridges gorm's logging into zerolog.
type dbLogger struct {
	log zerolog.Logger
}

// LogMode is a no-op, filtering is left to the zerolog level.
func (l dbLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l dbLogger) Info(_ context.Context, format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l dbLogger) Warn(_ context.Context, format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l dbLogger) Error(_ context.Context, format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

// Trace logs every query at debug level. Not-found results are expected
// outcomes, not errors.
func (l dbLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	query, rows := fc()

	event := l.log.Debug()
	if err != nil && !errors.Is(err, ErrResourceNotFound) {
		event = l.log.Error().Err(err)
	}

	event.
		Str("query", query).
		Int64("rows", rows).
		Dur("elapsed", time.Since(begin)).
		Msg("database")
}

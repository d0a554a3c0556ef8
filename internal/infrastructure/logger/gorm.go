package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes GORM statements into zap, tagged with the request and
// firm carried in the context. Statement text is withheld by default since
// bound values include client contact details.
type GormLogger struct {
	logger       *zap.Logger
	level        gormlogger.LogLevel
	slowQuery    time.Duration
	keepNotFound bool
	includeSQL   bool
}

// GormLoggerOption tweaks a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold flags queries slower than d as warnings. Zero disables it.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowQuery = d }
}

// WithIgnoreRecordNotFoundError controls whether ErrRecordNotFound is logged
// as a SQL error. Lookups miss all the time, so it is ignored by default.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.keepNotFound = !ignore }
}

// WithFullSQL adds the rendered statement under the "sql" key
func WithFullSQL(enabled bool) GormLoggerOption {
	return func(l *GormLogger) { l.includeSQL = enabled }
}

// NewGormLogger returns a gorm logger.Interface backed by zap
func NewGormLogger(zl *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{logger: zl.Named("gorm"), level: level, slowQuery: defaultSlowQuery}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, data...)
	}
}

// Trace logs one finished statement: failures at error, slow ones at warn,
// the rest at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	if err != nil && l.level >= gormlogger.Error {
		if !l.keepNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		l.logger.Error("SQL Error", append(l.statementFields(ctx, elapsed, fc), zap.Error(err))...)
		return
	}
	if l.slowQuery > 0 && elapsed > l.slowQuery && l.level >= gormlogger.Warn {
		l.logger.Warn(fmt.Sprintf("SLOW SQL >= %v", l.slowQuery), l.statementFields(ctx, elapsed, fc)...)
		return
	}
	if l.level >= gormlogger.Info {
		l.logger.Debug("SQL Query", l.statementFields(ctx, elapsed, fc)...)
	}
}

func (l *GormLogger) statementFields(ctx context.Context, elapsed time.Duration, fc func() (string, int64)) []zap.Field {
	sql, rows := fc()
	fields := []zap.Field{zap.Duration("elapsed", elapsed), zap.Int64("rows", rows)}
	if l.includeSQL {
		fields = append(fields, zap.String("sql", sql))
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetFirmID(ctx); id != "" {
		fields = append(fields, zap.String("firm_id", id))
	}
	return fields
}

// MapGormLogLevel turns the application log level into a GORM level.
// debug and info both log every statement; anything unknown means warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold flags queries on their span
const DefaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db plus a callback that tags slow
// queries. Query variables never reach spans since they carry client PII.
func RegisterDBTracing(db *gorm.DB, dbName string, slowThreshold time.Duration, logger *zap.Logger) error {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowQueryThreshold
	}
	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName(dbName), otelgorm.WithoutQueryVariables())); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { markSlowQuery(tx, slowThreshold) }

	cb := db.Callback()
	for _, reg := range []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("lexflow:before_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register("lexflow:before_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register("lexflow:before_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("lexflow:before_delete", before) },
		func() error { return cb.Create().After("gorm:create").Register("lexflow:slow_create", after) },
		func() error { return cb.Query().After("gorm:query").Register("lexflow:slow_query", after) },
		func() error { return cb.Update().After("gorm:update").Register("lexflow:slow_update", after) },
		func() error { return cb.Delete().After("gorm:delete").Register("lexflow:slow_delete", after) },
	} {
		if err := reg(); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", slowThreshold))
	return nil
}

func markSlowQuery(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}

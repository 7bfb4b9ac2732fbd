// Package logger builds the zap loggers used across the service.
//
// New turns a Config into a *zap.Logger. The "debug" level starts from zap's
// development preset; anything else starts from the production preset. The
// Format field picks json records or colored console output, which the CLI
// uses for its error report.
//
// Handlers derive a request-scoped logger with WithRayID, which copies the
// ray id stored by the rayid middleware onto every record:
//
//	l := logger.WithRayID(log, c)
//	l.Warn("Catalog entry skipped", zap.Error(err))
//
// Levels are parsed by zapcore.ParseLevel; an unknown level is a
// configuration error.
package logger

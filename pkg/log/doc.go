// Package log provides the logging abstraction used across picoparser.
//
// Library packages never write to a global logger. They accept a [Logger]
// through their options and default to [NoopLogger], so embedding
// applications decide where output goes.
//
// # Usage
//
// Use the zerolog adapter with console output:
//
//	logger := log.NewZerologAdapter(zerolog.InfoLevel)
//
// Or wrap an existing zerolog.Logger:
//
//	logger := log.NewZerologAdapterWithLogger(zl)
//
// Frame-scoped events carry the byte range they refer to:
//
//	logger.Warn("frame decode failed", log.Range(off, n), log.Err(err))
package log

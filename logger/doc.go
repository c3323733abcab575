// Package logger provides structured logging for httpaccess using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("httpaccess")
//	log.Warn("host extraction failed", logger.Fields("url", raw))
package logger

// Package errors provides the structured error type used across httpaccess.
// Errors carry a machine-readable code, a retryable hint and the HTTP status a
// front end would map them to.
package errors

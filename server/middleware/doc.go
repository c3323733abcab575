// Package middleware holds the Gin middleware of the status server.
package middleware

// Package endpoint holds the Gin handlers of the status server.
package endpoint

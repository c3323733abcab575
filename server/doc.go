// Package server runs the httpaccess status server: a Gin engine served
// over HTTP/1.1 and cleartext HTTP/2 that exposes health, build info, the
// client registry state and the response status policy.
//
// Middleware (server/middleware): panic recovery, request IDs, request
// logging and OpenTelemetry spans and metrics.
//
// Endpoints (server/endpoint):
//
//   - GET /health: aggregated component health
//   - GET /info: build information
//   - GET /status: settings summary and registry snapshot
//   - GET /validate/:code: response status classification
//   - GET /bypass/:host: proxy bypass decision for a host
package server

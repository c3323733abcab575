// Package observability wires OpenTelemetry tracing and metrics for the
// httpaccess binaries and aggregates component health for the status server.
//
// Exporters are only started when an OTLP endpoint is configured:
//
//	cfg := observability.Config{Endpoint: "localhost:4318", Insecure: true}
//	cfg.ApplyDefaults()
//	providers, err := observability.Setup(ctx, "httpaccess", cfg)
//	defer providers.Shutdown(ctx)
//
// Health:
//
//	health := observability.NewServiceHealth("httpaccess", version.Version)
//	for _, h := range registry.HealthAll(ctx) {
//		health.AddComponent(h)
//	}
package observability

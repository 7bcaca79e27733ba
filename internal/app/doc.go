// Package app wires the validation server: configuration, telemetry,
// services, middleware and routes, and owns the HTTP server lifecycle.
//
// # Initialization Flow
//
//	1. Resolve paths and create output directories
//	2. Initialize OpenTelemetry and the quality metrics
//	3. Create the validation and health services
//	4. Build the chi router and the HTTP server
//
// # Routes
//
//	POST /api/v1/validate   multipart "file" upload, returns the report
//	GET  /api/v1/catalog    metric names every asset must carry
//	GET  /healthz           health, 503 when the catalog cannot be loaded
//	GET  /metrics           Prometheus exposition
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// Server.ShutdownTimeout and flushes the telemetry providers.
package app

// Package app wires the dashboard server together and runs it.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, then YAML file, then FINDASH_* env)
//	2. Resolve paths and create the log and export directories
//	3. Initialize logging and OpenTelemetry
//	4. Load the category taxonomy and build the dataset repository
//	5. Create the exporter, dashboard and health services and the websocket hub
//	6. Set up middleware, handlers and the HTTP server
//
// # Routes
//
//	GET /                                   interactive dashboard page
//	GET /ws                                 dataset reload notifications
//	GET /api/health, /health/ready, /health/live, /version
//	GET /api/v1/meta
//	GET /api/v1/categories/{category}/options
//	GET /api/v1/dashboard
//	GET /api/v1/export/{view}.{format}
//	GET /metrics                            Prometheus scrape endpoint
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM. Stop closes websocket clients, drains
// in-flight requests, stops the dataset watcher and flushes telemetry.
// Initialization errors are returned to the caller; the package never
// calls os.Exit.
package app

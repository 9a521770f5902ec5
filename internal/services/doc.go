// Package services implements the business logic between the transports
// (HTTP handlers, the CLI) and the dataset.
//
// DashboardService resolves a raw selection request against the loaded
// dataset and the category taxonomy, runs a render pass and exports
// views. HealthService reports liveness and readiness.
//
// Services take their dependencies through constructors, propagate
// context for cancellation and tracing, and return sentinel errors
// (see errors.go) that handlers map to API errors.
package services

// Package http exposes the read-only query API over the converter's outputs.
//
// Handlers stay thin: they validate path and query parameters with
// validator, call the services layer and render contract types from
// pkg/contracts/api/v1. Service errors become JSON error bodies through
// internal/errors; unknown routes get RFC 7807 problems from
// internal/middleware.
//
// Routes:
//
//	GET /healthz
//	GET /version
//	GET /metrics
//	GET /api/v1/instruments?type=
//	GET /api/v1/maps/{symbol}
//	GET /api/v1/maps/{symbol}/resolve?date=
//	GET /api/v1/factors/{symbol}?date=
//	GET /api/v1/calendar?from=&to=
//	GET /api/v1/runs/latest
package http

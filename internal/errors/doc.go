// Package errors holds the error taxonomy of the pipeline.
//
// Per-record and per-instrument failures are AppErrors of a non-fatal type
// and end up in the shared ErrorLog. Only CONFIGURATION_INVALID halts a run.
// APIError is the JSON shape returned by the query API.
package errors

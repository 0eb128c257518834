// Package operations runs the conversion pipeline.
//
// A run is a set of Steps planned in dependency order by the Registry and
// executed by the Manager: ingest, calendar, map files, factor files, bars and
// export. Each step fans its per-instrument work out over a Batch, which logs
// instrument failures to the error log and keeps going. Only fatal errors stop
// a run. Every run ends with a RunManifest next to the outputs.
package operations

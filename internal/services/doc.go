// Package services implements the read side of the query API.
//
// DataService answers lookups against the files a pipeline run produced:
// map files, factor files, the normalized holiday list and the run
// manifest. Parsed files are cached with go-cache and reloaded when their
// modification time changes, so a new run is visible without a restart.
// HealthService reports liveness and whether the output tree is readable.
package services

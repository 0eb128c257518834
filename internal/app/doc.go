// Package app wires the query API server: configuration, logging,
// OpenTelemetry, the services over the converter's output tree, the chi
// router and graceful shutdown.
//
// Usage:
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app

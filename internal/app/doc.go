// Package app wires the finextract HTTP service together: configuration,
// logging, OpenTelemetry, the extraction engine, services, middleware and
// routes, plus the server lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, YAML and environment
//	2. Initialize logging and observability
//	3. Build the workbook loader, extractor and services
//	4. Set up middleware and routes
//	5. Start the HTTP server and wait for a shutdown signal
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use app.New with config.Default() and drive Router directly.
package app

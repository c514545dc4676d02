// Package services implements the business logic layer of finextract. It sits
// between the transports (CLI and HTTP handlers) and the extraction engine.
//
// # Services
//
//	- ExtractionService: validates inputs, runs the extraction engine over
//	  files, uploads or pre-read rows, and records spans and metrics
//	- HealthService: liveness, readiness and version reporting
//
// # Error Handling
//
// Services return *errors.AppError values that the HTTP error handler maps to
// problem responses:
//
//	- VALIDATION for bad input (no files, unsupported extension, empty file)
//	- LIMIT for oversized or too many files
//	- NOT_FOUND for missing paths
//	- PARSING for files the engine could not read
//
// Context cancellation errors are returned unchanged.
//
// # Testing
//
// The engine and validator are interfaces so tests can substitute mocks:
//
//	engine := new(mockEngine)
//	engine.On("ExtractSheets", mock.Anything, "request", mock.Anything).Return(result)
//	svc, _ := services.NewExtractionService(engine, nil, nil, nil, logger)
package services

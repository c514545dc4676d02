// Package http implements the HTTP handlers of the finextract service. Handlers
// only deal with transport concerns: they parse and validate requests, call a
// service and encode the result. Every failure is written as an RFC 7807
// problem through errors.ErrorHandler.
//
// # Endpoints
//
//	POST /api/v1/extract/files   multipart upload, field "files" (repeatable)
//	POST /api/v1/extract/rows    JSON body with pre-read sheets
//	GET  /api/health             overall status
//	GET  /api/health/live        liveness check
//	GET  /api/health/ready       readiness check, 503 when not ready
//	GET  /api/version            build information
//	GET  /metrics                Prometheus exposition
//
// Both extraction endpoints accept ?format=json|csv|xlsx. JSON returns the
// full envelope with per-sheet summaries; csv and xlsx return the records as
// an attachment.
package http

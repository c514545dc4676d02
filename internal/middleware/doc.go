// Package middleware holds the HTTP middleware chain of the extraction
// server: request IDs, structured request logging, rate limiting, request
// timeouts, CORS, security headers, body limits, request validation and
// OpenTelemetry instrumentation.
//
// The expected order is:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.RealIP)
//	r.Use(otelMW.Handler)
//	r.Use(middleware.StructuredLogger(logger))
//	r.Use(errorHandler.Middleware)
//	r.Use(middleware.SecurityHeaders)
//	r.Use(middleware.CORS(corsConfig))
//	r.Use(limiter.Handler)
//	r.Use(middleware.Timeout(cfg.Server.RequestTimeout, logger))
//	r.Use(middleware.Compress(5, "application/json"))
package middleware

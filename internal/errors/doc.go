// Package errors defines the error vocabulary of finextract.
//
// AppError carries a typed failure (PARSING, VALIDATION, NOT_FOUND, LIMIT,
// STORAGE, CONFIG) with optional context such as the offending file name.
// APIError is a ready-made HTTP error. ErrorHandler turns either into an
// RFC 7807 problem document:
//
//	h := errors.NewErrorHandler(logger, false)
//	h.HandleError(w, r, err)
package errors

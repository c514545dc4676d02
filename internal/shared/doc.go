// Package shared holds code used across finextract packages that belongs to
// no single layer.
//
// The testutil subpackage provides a capturing slog handler and spreadsheet
// fixtures (xlsx and csv bytes built with excelize and encoding/csv) for
// tests in other packages.
package shared

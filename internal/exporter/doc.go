// Package exporter encodes extracted year records as JSON, CSV or XLSX.
//
// The tabular formats share one column layout: year, the canonical metrics in
// rule order, and the business composition rendered as "name:value;...".
// CSV output starts with a UTF-8 BOM; XLSX output keeps metric values
// numeric and adds a Composition sheet with one segment per row.
//
//	f, _ := exporter.ParseFormat("xlsx")
//	err := exporter.Write(w, f, records)
package exporter

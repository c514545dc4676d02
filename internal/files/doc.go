// Package files finds spreadsheet inputs on disk and writes output files.
//
// Discovery expands command-line arguments (files, directories, glob
// patterns) into an ordered list of spreadsheet files; directory contents are
// sorted by name so extraction order is deterministic. Manager writes output
// atomically through a temporary file and rename.
package files

package extraction

import "fmt"

// FileError reports an input file that could not be read as a spreadsheet.
// It aborts the whole extraction call.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

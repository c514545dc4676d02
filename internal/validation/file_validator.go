package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "finextract/internal/errors"
	"finextract/internal/workbook"
)

// Causes carried by the errors of FileValidator, for errors.Is.
var (
	ErrTooManyFiles    = errors.New("too many input files")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")
)

// FileValidator checks spreadsheet inputs before they reach the extractor.
// Failures are *apierrors.AppError values carrying the offending file in
// their context.
type FileValidator struct {
	logger      *slog.Logger
	maxFileSize int64
	maxFiles    int
}

// NewFileValidator creates a new file validator. Non-positive limits
// disable the corresponding check.
func NewFileValidator(maxFileSize int64, maxFiles int, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:      logger.With(slog.String("component", "file_validator")),
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
	}
}

// ValidateCount checks the number of files in one extraction call. Zero
// files is valid and extracts nothing.
func (v *FileValidator) ValidateCount(n int) error {
	if v.maxFiles > 0 && n > v.maxFiles {
		return apierrors.NewLimitError(fmt.Sprintf("%d files exceed the limit of %d", n, v.maxFiles), ErrTooManyFiles).
			WithContext("max_files", v.maxFiles).
			WithContext("files", n)
	}
	return nil
}

// ValidateUpload checks the name and size of an in-memory input.
func (v *FileValidator) ValidateUpload(name string, size int64) error {
	if !workbook.IsSpreadsheetName(name) {
		v.logger.Warn("Rejected file with unsupported extension",
			slog.String("file", name))
		return apierrors.NewAppError(apierrors.ErrTypeValidation,
			fmt.Sprintf("%s is not a spreadsheet (accepted: %s)", name, strings.Join(workbook.Extensions(), ", ")),
			ErrUnsupportedFile).
			WithContext("file", name)
	}
	if size == 0 {
		return apierrors.NewAppError(apierrors.ErrTypeValidation, fmt.Sprintf("%s has no content", name), ErrEmptyFile).
			WithContext("file", name)
	}
	if v.maxFileSize > 0 && size > v.maxFileSize {
		v.logger.Warn("Rejected oversized file",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("max_size", v.maxFileSize))
		return apierrors.NewLimitError(
			fmt.Sprintf("%s is %d bytes, above the limit of %d", name, size, v.maxFileSize), ErrFileTooLarge).
			WithContext("file", name).
			WithContext("max_size", v.maxFileSize)
	}
	return nil
}

// ValidateFile checks that path is a readable spreadsheet file within the
// size limit.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apierrors.NewNotFoundError(fmt.Sprintf("file %s", path)).
			WithContext("file", path)
	}
	if err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err).
			WithContext("file", path)
	}
	if info.IsDir() {
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path)).
			WithContext("file", path)
	}

	if err := v.ValidateUpload(filepath.Base(path), info.Size()); err != nil {
		var appErr *apierrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("file", path)
		}
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err).
			WithContext("file", path)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateFiles validates the count and then every path in order, stopping
// at the first failure.
func (v *FileValidator) ValidateFiles(paths []string) error {
	if err := v.ValidateCount(len(paths)); err != nil {
		return err
	}
	for _, p := range paths {
		if err := v.ValidateFile(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	return nil
}

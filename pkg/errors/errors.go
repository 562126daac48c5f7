// Package errors defines the sentinel error kinds used across the indexing
// pipeline and query engine, plus a small wrapping type that carries a
// process exit code for the CLI entrypoints.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusItemMalformed marks a single corpus document that could not
	// be parsed. It is recoverable: the indexer logs and skips the document
	// without assigning it a doc ID.
	ErrCorpusItemMalformed = errors.New("corpus item malformed")

	// ErrSpillIO means a partial-index flush to disk failed. Fatal.
	ErrSpillIO = errors.New("partial index spill failed")

	// ErrMergeInputMalformed means a partial-index file could not be parsed
	// during the external merge. Fatal.
	ErrMergeInputMalformed = errors.New("partial index file malformed")

	// ErrFinalIndexWrite means the TF-IDF rewrite pass could not write the
	// final index or meta-index. Fatal; INDEX_STORAGE must be discarded.
	ErrFinalIndexWrite = errors.New("final index write failed")

	// ErrMetaIndexLoad and ErrFinalIndexOpen are returned by the query
	// engine's startup path, never by indexing.
	ErrMetaIndexLoad   = errors.New("meta-index load failed")
	ErrFinalIndexOpen  = errors.New("final index open failed")
	ErrURLRegistryLoad = errors.New("url registry load failed")
)

// AppError wraps a sentinel error with operational context and the process
// exit code the CLI should use when it propagates out of main.
type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel error with a message and exit code.
func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, ExitCode: exitCode}
}

// Newf is New with a formatted message.
func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...), ExitCode: exitCode}
}

// ExitCode returns the process exit code an error should produce. Unwrapped
// errors default to 1. Per-document ErrCorpusItemMalformed errors are
// handled inline by the pipeline and never reach here; a failure to read the
// corpus directory itself is returned wrapped in ErrCorpusItemMalformed.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return 1
}

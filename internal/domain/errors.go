package domain

import "fmt"

// TransferError reports a failed Fetch stage.
type TransferError struct {
	URL string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ExtractionError reports a failed Extract stage. ExitCode is -1 when the
// engine could not be launched at all.
type ExtractionError struct {
	Archive  string
	ExitCode int
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
	}
	return fmt.Sprintf("extract %s: engine exited with status %d", e.Archive, e.ExitCode)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// CleanupError reports a failed Cleanup stage.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

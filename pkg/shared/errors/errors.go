package errors

import "fmt"

// NoInputError reports that the audit could not run at all, as opposed to a
// clean scan that found zero files. Callers use this to tell the two apart.
type NoInputError struct {
	Path   string
	Reason string
}

func (e *NoInputError) Error() string {
	return fmt.Sprintf("no auditable input at %q: %s", e.Path, e.Reason)
}

func NewNoInputError(path, reason string) error {
	return &NoInputError{Path: path, Reason: reason}
}

// DetectorError wraps a failure isolated to a single detector on a single
// file. The rest of the run continues.
type DetectorError struct {
	Detector string
	FilePath string
	Err      error
}

func (e *DetectorError) Error() string {
	return fmt.Sprintf("detector %q failed on %q: %v", e.Detector, e.FilePath, e.Err)
}

func (e *DetectorError) Unwrap() error {
	return e.Err
}

func NewDetectorError(detector, filePath string, err error) error {
	return &DetectorError{Detector: detector, FilePath: filePath, Err: err}
}

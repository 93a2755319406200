package exchange

import "fmt"

// ImportFormatError is returned when import input cannot be interpreted.
// Nothing is imported when it occurs.
type ImportFormatError struct {
	Reason string
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("invalid import file: %s", e.Reason)
}

// BackupFormatError is returned when a backup does not hold a valid document
type BackupFormatError struct {
	Reason string
	Err    error
}

func (e *BackupFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid backup: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid backup: %s", e.Reason)
}

func (e *BackupFormatError) Unwrap() error {
	return e.Err
}

// Package notify carries user-facing feedback: short toasts and yes/no
// confirmations. The CLI uses the console implementation; tests use Recorder.
package notify

import (
	"errors"

	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/db"
)

// Severity of a toast
type Severity int

const (
	Info Severity = iota
	Success
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Notifier shows a short message to the user
type Notifier interface {
	Notify(severity Severity, message string)
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(prompt string) bool
}

// SeverityFor maps an operation error to the severity it is shown with.
// A failed write or a full task is a warning, signing up twice is only
// informational and everything else is an error.
func SeverityFor(err error) Severity {
	var storageErr *db.StorageError
	switch {
	case err == nil:
		return Success
	case errors.Is(err, services.ErrAlreadySignedUp):
		return Info
	case errors.Is(err, services.ErrTaskFull), errors.As(err, &storageErr):
		return Warning
	}
	return Error
}

// Report shows err with its mapped severity and returns it unchanged
func Report(n Notifier, err error) error {
	if err != nil {
		n.Notify(SeverityFor(err), err.Error())
	}
	return err
}

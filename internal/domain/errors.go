package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingBackupID        = errors.New("no DeploymentId provided")
	ErrMissingApplicationName = errors.New("no ApplicationName provided")
	ErrNoConnectionString     = errors.New("no valid connection string found")
	ErrBackupNotFound         = errors.New("backup not found")
	ErrToolNotFound           = errors.New("binary not found")
	ErrSpawn                  = errors.New("spawn error")
)

// ExitError reports a dump/restore process that exited non-zero.
type ExitError struct {
	Tool string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s failed with code: %d", e.Tool, e.Code)
}

type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindResource   ErrorKind = "resource"
	KindSubprocess ErrorKind = "subprocess"
	KindTransport  ErrorKind = "transport"
)

// Kind classifies err for logs and metric labels. Unknown errors are treated
// as transport failures.
func Kind(err error) ErrorKind {
	var exitErr *ExitError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingBackupID),
		errors.Is(err, ErrMissingApplicationName),
		errors.Is(err, ErrNoConnectionString),
		errors.Is(err, ErrBackupNotFound):
		return KindValidation
	case errors.Is(err, ErrToolNotFound):
		return KindResource
	case errors.Is(err, ErrSpawn), errors.As(err, &exitErr):
		return KindSubprocess
	default:
		return KindTransport
	}
}

package usecase

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/semmidev/dbhook/internal/domain"
)

const defaultProgressEvery = 5 * 1024 * 1024

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

type TransferOptions struct {
	// ProgressEvery is the byte interval between progress log lines.
	ProgressEvery int64
}

// Transfer moves archives between a dump/restore subprocess and an archive
// store. Nothing is retried here.
type Transfer struct {
	tools         domain.Tool
	store         domain.ArchiveStore
	logger        Logger
	progressEvery int64
}

func NewTransfer(tools domain.Tool, store domain.ArchiveStore, logger Logger, opts TransferOptions) *Transfer {
	every := opts.ProgressEvery
	if every <= 0 {
		every = defaultProgressEvery
	}

	return &Transfer{
		tools:         tools,
		store:         store,
		logger:        logger,
		progressEvery: every,
	}
}

func ensureExecutable(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrToolNotFound, path)
	}

	// Read-only deployments ship the binary already executable, so a
	// failed chmod is ignored.
	_ = os.Chmod(path, 0755)
	return nil
}

func exitError(tool string, err error) error {
	if err == nil {
		return nil
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &domain.ExitError{Tool: tool, Code: ee.ExitCode()}
	}

	return fmt.Errorf("%s: %w", tool, err)
}

func spawnError(tool string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrSpawn, tool, err)
}

func megabytes(n int64) float64 {
	return float64(n) / (1024 * 1024)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/semmidev/dbhook/internal/domain"
)

// Restore pipes the stored archive into the restore tool's stdin. The exit
// code decides the outcome.
func (t *Transfer) Restore(ctx context.Context, uri, key string) (domain.TransferStats, error) {
	start := time.Now()
	path := t.tools.RestorePath()
	name := filepath.Base(path)

	if err := ensureExecutable(path); err != nil {
		return domain.TransferStats{}, err
	}

	archive, err := t.store.Download(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrBackupNotFound) {
			return domain.TransferStats{}, fmt.Errorf("no backup exists for %s: %w", key, domain.ErrBackupNotFound)
		}
		return domain.TransferStats{}, fmt.Errorf("download %s: %w", key, err)
	}
	defer archive.Close()

	body := newProgressReader(archive, t.progressEvery, func(total int64) {
		t.logger.Infof("[%s download]: %.2f MB downloaded", t.store.Name(), megabytes(total))
	})

	stderr := newLineWriter(func(line string) {
		t.logger.Infof("[%s]: %s", name, line)
	})

	cmd := exec.CommandContext(ctx, path, t.tools.RestoreArgs(uri)...)
	cmd.Stdin = body
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		t.logger.Errorf("[%s] spawn error: %v", name, err)
		return domain.TransferStats{}, spawnError(name, err)
	}

	err = exitError(name, cmd.Wait())
	stderr.Flush()

	stats := domain.TransferStats{Bytes: body.Total(), Duration: time.Since(start)}
	if err != nil {
		return stats, err
	}

	t.logger.Infof("[%s]: restored %s from %s in %s",
		name, humanize.IBytes(uint64(stats.Bytes)), key, stats.Duration.Round(time.Millisecond))

	return stats, nil
}

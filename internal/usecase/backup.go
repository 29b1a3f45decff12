package usecase

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/semmidev/dbhook/internal/domain"
	"golang.org/x/sync/errgroup"
)

var errUploadStopped = errors.New("upload stopped reading")

// Backup pipes the dump's stdout straight into the store. It succeeds only
// when the upload completes and the dump exits 0.
func (t *Transfer) Backup(ctx context.Context, uri, key string) (domain.TransferStats, error) {
	start := time.Now()
	path := t.tools.DumpPath()
	name := filepath.Base(path)

	if err := ensureExecutable(path); err != nil {
		return domain.TransferStats{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	pr, pw := io.Pipe()

	marker := t.tools.DumpLogMarker()
	stderr := newLineWriter(func(line string) {
		if strings.Contains(line, marker) {
			t.logger.Infof("[%s]: %s", name, line)
		}
	})

	cmd := exec.CommandContext(gctx, path, t.tools.DumpArgs(uri)...)
	cmd.Stdout = pw
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		pw.Close()
		t.logger.Errorf("[%s] spawn error: %v", name, err)
		return domain.TransferStats{}, spawnError(name, err)
	}

	body := newProgressReader(pr, t.progressEvery, func(total int64) {
		t.logger.Infof("[%s upload]: %.2f MB uploaded", t.store.Name(), megabytes(total))
	})

	g.Go(func() error {
		err := exitError(name, cmd.Wait())
		stderr.Flush()
		// A nil error closes the pipe with EOF and lets the upload finish.
		pw.CloseWithError(err)
		return err
	})

	g.Go(func() error {
		err := t.store.Upload(gctx, key, body)
		pr.CloseWithError(errUploadStopped)
		return err
	})

	err := g.Wait()
	stats := domain.TransferStats{Bytes: body.Total(), Duration: time.Since(start)}
	if err != nil {
		return stats, err
	}

	t.logger.Infof("[%s upload]: %s stored at %s in %s",
		t.store.Name(), humanize.IBytes(uint64(stats.Bytes)), key, stats.Duration.Round(time.Millisecond))

	return stats, nil
}

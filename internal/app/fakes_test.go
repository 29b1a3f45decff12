package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/semmidev/dbhook/internal/domain"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(level, template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Infof(template string, args ...interface{}) {
	l.record("INFO", template, args...)
}

func (l *recordingLogger) Warnf(template string, args ...interface{}) {
	l.record("WARN", template, args...)
}

func (l *recordingLogger) Errorf(template string, args ...interface{}) {
	l.record("ERROR", template, args...)
}

func (l *recordingLogger) all() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

type fakeDeployments struct {
	name  string
	calls []string
}

func (f *fakeDeployments) ApplicationName(ctx context.Context, deploymentID string) (string, bool) {
	f.calls = append(f.calls, deploymentID)
	return f.name, f.name != ""
}

type statusCall struct {
	status       string
	deploymentID string
	hookID       string
}

type fakeNotifier struct {
	calls   []statusCall
	ctxErrs []error
}

func (f *fakeNotifier) MarkSucceeded(ctx context.Context, deploymentID, hookExecutionID string) {
	f.calls = append(f.calls, statusCall{"Succeeded", deploymentID, hookExecutionID})
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
}

func (f *fakeNotifier) MarkFailed(ctx context.Context, deploymentID, hookExecutionID string) {
	f.calls = append(f.calls, statusCall{"Failed", deploymentID, hookExecutionID})
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
}

type fakeSecrets struct {
	uri   string
	calls int
}

func (f *fakeSecrets) ConnectionString(ctx context.Context) (string, bool) {
	f.calls++
	return f.uri, f.uri != ""
}

type transferCall struct {
	uri string
	key string
}

type fakeTransfer struct {
	stats      domain.TransferStats
	backupErr  error
	restoreErr error
	backups    []transferCall
	restores   []transferCall

	// during runs inside Backup before it returns.
	during func()
}

func (f *fakeTransfer) Backup(ctx context.Context, uri, key string) (domain.TransferStats, error) {
	f.backups = append(f.backups, transferCall{uri, key})
	if f.during != nil {
		f.during()
		if err := ctx.Err(); err != nil {
			return domain.TransferStats{}, err
		}
	}
	if f.backupErr != nil {
		return domain.TransferStats{}, f.backupErr
	}
	return f.stats, nil
}

func (f *fakeTransfer) Restore(ctx context.Context, uri, key string) (domain.TransferStats, error) {
	f.restores = append(f.restores, transferCall{uri, key})
	if f.restoreErr != nil {
		return domain.TransferStats{}, f.restoreErr
	}
	return f.stats, nil
}

func (f *fakeTransfer) calls() int {
	return len(f.backups) + len(f.restores)
}

type fakeReporter struct {
	err      error
	outcomes []domain.Outcome
	ctxErrs  []error
}

func (f *fakeReporter) Name() string {
	return "fake"
}

func (f *fakeReporter) Report(ctx context.Context, outcome domain.Outcome) error {
	f.outcomes = append(f.outcomes, outcome)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.err
}

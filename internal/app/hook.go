package app

import (
	"context"
	"fmt"
	"time"

	"github.com/semmidev/dbhook/internal/domain"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// statusTimeout bounds the CodeDeploy and reporter calls made once the
// outcome is known. They ignore the invocation's cancellation.
const statusTimeout = 10 * time.Second

// Transferer moves one archive between the database tools and the store.
type Transferer interface {
	Backup(ctx context.Context, uri, key string) (domain.TransferStats, error)
	Restore(ctx context.Context, uri, key string) (domain.TransferStats, error)
}

// Result is what one invocation produced. The caller decides how to turn it
// into a process exit or a platform error.
type Result struct {
	domain.Outcome
}

func (r Result) ExitCode() int {
	if r.Err != nil {
		return 1
	}
	return 0
}

// Hook runs one lifecycle event end to end.
type Hook struct {
	deployments domain.DeploymentReader
	notifier    domain.DeploymentNotifier
	secrets     domain.SecretResolver
	transfer    Transferer
	logger      Logger
	reporters   []domain.Reporter
	now         func() time.Time
}

func NewHook(
	deployments domain.DeploymentReader,
	notifier domain.DeploymentNotifier,
	secrets domain.SecretResolver,
	transfer Transferer,
	logger Logger,
	reporters ...domain.Reporter,
) *Hook {
	return &Hook{
		deployments: deployments,
		notifier:    notifier,
		secrets:     secrets,
		transfer:    transfer,
		logger:      logger,
		reporters:   reporters,
		now:         time.Now,
	}
}

func (h *Hook) Handle(ctx context.Context, event domain.Event) Result {
	res := Result{domain.Outcome{
		Action:          event.NormalizedAction(),
		DeploymentID:    event.DeploymentID,
		HookExecutionID: event.LifecycleEventHookExecutionID,
	}}

	res.Err = h.run(ctx, event, &res.Outcome)
	if res.Err != nil {
		h.logger.Errorf("%s failed (%s): %v", res.Action, domain.Kind(res.Err), res.Err)
	}

	h.report(ctx, res.Outcome)
	return res
}

func (h *Hook) run(ctx context.Context, event domain.Event, o *domain.Outcome) error {
	h.normalize(ctx, event, o)

	if o.BackupID == "" {
		return domain.ErrMissingBackupID
	}
	if o.ApplicationName == "" {
		return domain.ErrMissingApplicationName
	}

	o.Key = domain.BackupKey(o.ApplicationName, o.BackupID)

	uri, ok := h.secrets.ConnectionString(ctx)
	if !ok {
		return domain.ErrNoConnectionString
	}

	h.logger.Infof("Using backup key: %q", o.Key)

	if o.Action == domain.ActionRestore {
		return h.restore(ctx, uri, o)
	}
	return h.backup(ctx, uri, o)
}

// normalize fills in the backup id and application name. Events carrying a
// hook execution id come from CodeDeploy; anything else is a manual run.
func (h *Hook) normalize(ctx context.Context, event domain.Event, o *domain.Outcome) {
	if event.LifecycleEventHookExecutionID != "" {
		o.BackupID = event.DeploymentID
		o.ApplicationName = event.ApplicationName
		if event.DeploymentID == "" {
			return
		}
		if name, ok := h.deployments.ApplicationName(ctx, event.DeploymentID); ok {
			o.ApplicationName = name
		}
		return
	}

	o.ApplicationName = event.ApplicationName
	o.BackupID = event.DeploymentID
	if o.BackupID == "" {
		o.BackupID = domain.BackupIDFromTime(h.now())
	}
}

// restore never touches the deployment status: it is an operator action,
// not a lifecycle gate.
func (h *Hook) restore(ctx context.Context, uri string, o *domain.Outcome) error {
	stats, err := h.transfer.Restore(ctx, uri, o.Key)
	if err != nil {
		return fmt.Errorf("restore %s: %w", o.BackupID, err)
	}

	o.Stats = stats
	h.logger.Infof("Restore of %q completed", o.Key)
	return nil
}

func (h *Hook) backup(ctx context.Context, uri string, o *domain.Outcome) error {
	stats, err := h.transfer.Backup(ctx, uri, o.Key)
	if err != nil {
		if o.HookExecutionID != "" {
			sctx, cancel := detach(ctx)
			h.notifier.MarkFailed(sctx, o.DeploymentID, o.HookExecutionID)
			cancel()
		}
		return fmt.Errorf("backup %s: %w", o.BackupID, err)
	}

	o.Stats = stats
	h.logger.Infof("Backup to %q completed", o.Key)
	if o.HookExecutionID != "" {
		sctx, cancel := detach(ctx)
		h.notifier.MarkSucceeded(sctx, o.DeploymentID, o.HookExecutionID)
		cancel()
	}
	return nil
}

func (h *Hook) report(ctx context.Context, o domain.Outcome) {
	if len(h.reporters) == 0 {
		return
	}

	rctx, cancel := detach(ctx)
	defer cancel()

	for _, r := range h.reporters {
		if err := r.Report(rctx, o); err != nil {
			h.logger.Warnf("Failed to report to %s: %v", r.Name(), err)
		}
	}
}

func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), statusTimeout)
}

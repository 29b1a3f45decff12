package domain

import "context"

// Outcome describes one finished invocation.
type Outcome struct {
	Action          Action
	ApplicationName string
	BackupID        string
	Key             string
	DeploymentID    string
	HookExecutionID string
	Stats           TransferStats
	Err             error
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Reporter publishes an outcome somewhere for operators. Reporting is
// best-effort; callers log a returned error and move on.
type Reporter interface {
	Name() string
	Report(ctx context.Context, outcome Outcome) error
}

package domain

import "context"

// DeploymentReader recovers the application a deployment belongs to.
type DeploymentReader interface {
	ApplicationName(ctx context.Context, deploymentID string) (string, bool)
}

// DeploymentNotifier acknowledges a lifecycle hook. Implementations log and
// swallow every failure and do nothing when hookExecutionID is empty.
type DeploymentNotifier interface {
	MarkSucceeded(ctx context.Context, deploymentID, hookExecutionID string)
	MarkFailed(ctx context.Context, deploymentID, hookExecutionID string)
}

// SecretResolver returns ("", false) when no usable connection string exists.
type SecretResolver interface {
	ConnectionString(ctx context.Context) (string, bool)
}

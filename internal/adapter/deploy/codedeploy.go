package deploy

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codedeploy"
	"github.com/aws/aws-sdk-go-v2/service/codedeploy/types"
)

type codeDeployAPI interface {
	GetDeployment(ctx context.Context, params *codedeploy.GetDeploymentInput, optFns ...func(*codedeploy.Options)) (*codedeploy.GetDeploymentOutput, error)
	PutLifecycleEventHookExecutionStatus(ctx context.Context, params *codedeploy.PutLifecycleEventHookExecutionStatusInput, optFns ...func(*codedeploy.Options)) (*codedeploy.PutLifecycleEventHookExecutionStatusOutput, error)
	StopDeployment(ctx context.Context, params *codedeploy.StopDeploymentInput, optFns ...func(*codedeploy.Options)) (*codedeploy.StopDeploymentOutput, error)
}

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// CodeDeploy reads deployment metadata and acknowledges lifecycle hooks.
// Status calls log and swallow their errors.
type CodeDeploy struct {
	client codeDeployAPI
	logger Logger
}

func NewCodeDeploy(client *codedeploy.Client, logger Logger) *CodeDeploy {
	return newCodeDeploy(client, logger)
}

func newCodeDeploy(client codeDeployAPI, logger Logger) *CodeDeploy {
	return &CodeDeploy{client: client, logger: logger}
}

// ApplicationName returns ("", false) when the lookup fails or the
// deployment carries no application name.
func (c *CodeDeploy) ApplicationName(ctx context.Context, deploymentID string) (string, bool) {
	out, err := c.client.GetDeployment(ctx, &codedeploy.GetDeploymentInput{
		DeploymentId: aws.String(deploymentID),
	})
	if err != nil {
		c.logger.Errorf("Unable to get deployment %s: %v", deploymentID, err)
		return "", false
	}

	if out == nil || out.DeploymentInfo == nil {
		return "", false
	}

	name := aws.ToString(out.DeploymentInfo.ApplicationName)
	return name, name != ""
}

// MarkSucceeded lets the deployment continue.
func (c *CodeDeploy) MarkSucceeded(ctx context.Context, deploymentID, hookExecutionID string) {
	if hookExecutionID == "" {
		return
	}
	c.putStatus(ctx, deploymentID, hookExecutionID, types.LifecycleEventStatusSucceeded)
}

// MarkFailed fails the hook and then stops the deployment, whether or not the
// status update went through.
func (c *CodeDeploy) MarkFailed(ctx context.Context, deploymentID, hookExecutionID string) {
	if hookExecutionID == "" {
		return
	}
	c.putStatus(ctx, deploymentID, hookExecutionID, types.LifecycleEventStatusFailed)

	_, err := c.client.StopDeployment(ctx, &codedeploy.StopDeploymentInput{
		DeploymentId: aws.String(deploymentID),
	})
	if err != nil {
		c.logger.Errorf("Unable to stop deployment: %v", err)
		return
	}
	c.logger.Infof("Stopped deployment %s", deploymentID)
}

func (c *CodeDeploy) putStatus(ctx context.Context, deploymentID, hookExecutionID string, status types.LifecycleEventStatus) {
	_, err := c.client.PutLifecycleEventHookExecutionStatus(ctx, &codedeploy.PutLifecycleEventHookExecutionStatusInput{
		DeploymentId:                  aws.String(deploymentID),
		LifecycleEventHookExecutionId: aws.String(hookExecutionID),
		Status:                        status,
	})
	if err != nil {
		c.logger.Errorf("Unable to put lifecycle status %s: %v", status, err)
		return
	}
	c.logger.Infof("Lifecycle hook %s marked %s", hookExecutionID, status)
}

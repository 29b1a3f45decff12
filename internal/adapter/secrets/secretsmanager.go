package secrets

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type Logger interface {
	Warnf(template string, args ...interface{})
}

// SecretsManager resolves the database connection string from a JSON secret.
// Every call fetches the secret again; nothing is cached.
type SecretsManager struct {
	client   secretsAPI
	secretID string
	field    string
	logger   Logger
}

func NewSecretsManager(client *secretsmanager.Client, secretID, field string, logger Logger) *SecretsManager {
	return newSecretsManager(client, secretID, field, logger)
}

func newSecretsManager(client secretsAPI, secretID, field string, logger Logger) *SecretsManager {
	return &SecretsManager{
		client:   client,
		secretID: secretID,
		field:    field,
		logger:   logger,
	}
}

// ConnectionString returns ("", false) on any failure. The reason is logged,
// the secret never is.
func (s *SecretsManager) ConnectionString(ctx context.Context) (string, bool) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretID),
	})
	if err != nil {
		s.logger.Warnf("Unable to get secret %s: %v", s.secretID, err)
		return "", false
	}

	if out == nil || aws.ToString(out.SecretString) == "" {
		s.logger.Warnf("Secret %s has no string value", s.secretID)
		return "", false
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &fields); err != nil {
		s.logger.Warnf("Secret %s is not a JSON object", s.secretID)
		return "", false
	}

	value, ok := fields[s.field].(string)
	if !ok || value == "" {
		s.logger.Warnf("Secret %s has no %q field", s.secretID, s.field)
		return "", false
	}

	return value, true
}

package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/codedeploy"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/semmidev/dbhook/internal/adapter/database"
	"github.com/semmidev/dbhook/internal/adapter/deploy"
	"github.com/semmidev/dbhook/internal/adapter/notify"
	"github.com/semmidev/dbhook/internal/adapter/secrets"
	"github.com/semmidev/dbhook/internal/adapter/storage"
	"github.com/semmidev/dbhook/internal/config"
	"github.com/semmidev/dbhook/internal/domain"
	"github.com/semmidev/dbhook/internal/infrastructure/logger"
	"github.com/semmidev/dbhook/internal/infrastructure/metrics"
	"github.com/semmidev/dbhook/internal/usecase"
)

// App owns the clients for one process. Each client is built once here and
// handed to the components that need it.
type App struct {
	config *config.Config
	logger *logger.Logger
	hook   *Hook
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	log.Infof("Starting %s", cfg.App.Name)

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := initializeStore(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	log.Infof("✓ Archive store: %s", store.Name())

	toolsDir, err := cfg.ToolsDir()
	if err != nil {
		return nil, err
	}
	tools := database.NewMongoTools(toolsDir, cfg.Tools.Dump, cfg.Tools.Restore)

	transfer := usecase.NewTransfer(tools, store, log.With("component", "transfer"), usecase.TransferOptions{
		ProgressEvery: cfg.Transfer.ProgressEveryMB * 1024 * 1024,
	})

	codeDeploy := deploy.NewCodeDeploy(codedeploy.NewFromConfig(awsCfg), log.With("component", "codedeploy"))
	resolver := secrets.NewSecretsManager(
		secretsmanager.NewFromConfig(awsCfg),
		cfg.Secrets.SecretID,
		cfg.Secrets.Field,
		log.With("component", "secrets"),
	)

	reporters := initializeReporters(cfg, log)

	return &App{
		config: cfg,
		logger: log,
		hook:   NewHook(codeDeploy, codeDeploy, resolver, transfer, log.With("component", "hook"), reporters...),
	}, nil
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWS.Region),
	}

	// Without static keys the default chain applies (Lambda role, profile, env).
	if cfg.AWS.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

func initializeStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (domain.ArchiveStore, error) {
	switch cfg.Storage.Type {
	case config.StorageS3:
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.AWS.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
				o.UsePathStyle = true
			}
		})
		return storage.NewS3(client, storage.S3Options{
			Bucket:      cfg.Storage.Bucket,
			PartSize:    cfg.Storage.PartSizeMB * 1024 * 1024,
			Concurrency: cfg.Storage.Concurrency,
		}), nil

	case config.StorageLocal:
		store, err := storage.NewLocal(cfg.Storage.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return store, nil

	case config.StorageGDrive:
		store, err := storage.NewGDrive(ctx, cfg.Storage.CredentialsFile, cfg.Storage.FolderID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Drive: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}

// initializeReporters skips any reporter that fails to start; a broken
// notification channel must not block a deployment.
func initializeReporters(cfg *config.Config, log *logger.Logger) []domain.Reporter {
	var reporters []domain.Reporter

	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Errorf("Failed to initialize Telegram: %v", err)
		} else {
			reporters = append(reporters, tg)
			log.Infof("✓ Telegram notifications enabled")
		}
	}

	if cfg.Metrics.PushgatewayURL != "" {
		reporters = append(reporters, metrics.NewPusher(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job))
		log.Infof("✓ Pushgateway metrics enabled")
	}

	return reporters
}

func (a *App) Handle(ctx context.Context, event domain.Event) Result {
	return a.hook.Handle(ctx, event)
}

func (a *App) Shutdown() {
	a.logger.Close()
}

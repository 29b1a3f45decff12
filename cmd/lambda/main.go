package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/semmidev/dbhook/internal/app"
	"github.com/semmidev/dbhook/internal/config"
	"github.com/semmidev/dbhook/internal/domain"
	"github.com/semmidev/dbhook/internal/infrastructure/logger"
)

func main() {
	handler, err := newHandler(context.Background())
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}
	lambda.Start(handler.handle)
}

type handler struct {
	app *app.App
}

// newHandler builds the clients once per container; warm invocations reuse
// them.
func newHandler(ctx context.Context) (*handler, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// CloudWatch indexes JSON lines.
	if cfg.App.LogFormat == "console" {
		cfg.App.LogFormat = "json"
	}

	l, err := logger.New(logger.Options{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	application, err := app.New(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("initialize app: %w", err)
	}

	return &handler{app: application}, nil
}

func (h *handler) handle(ctx context.Context, event domain.Event) error {
	result := h.app.Handle(ctx, event)
	if code := result.ExitCode(); code != 0 {
		return fmt.Errorf("exit code %d: %w", code, result.Err)
	}
	return nil
}

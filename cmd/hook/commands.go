package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/semmidev/dbhook/internal/app"
	"github.com/semmidev/dbhook/internal/config"
	"github.com/semmidev/dbhook/internal/domain"
	"github.com/semmidev/dbhook/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string

	exitCode int
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "dbhook",
		Short:         "Back up or restore MongoDB around a CodeDeploy deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to an optional YAML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override app.log_level")

	root.AddCommand(newRunCmd(opts), newBackupCmd(opts), newRestoreCmd(opts))
	return root
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var eventPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Handle a lifecycle event given as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := readEvent(eventPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return invoke(cmd.Context(), opts, event)
		},
	}

	cmd.Flags().StringVarP(&eventPath, "event", "e", "-", `event JSON file, "-" for stdin`)
	return cmd
}

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var event domain.Event

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Dump the database into the archive store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			event.Action = domain.ActionValue(domain.ActionBackup)
			return invoke(cmd.Context(), opts, event)
		},
	}

	cmd.Flags().StringVarP(&event.ApplicationName, "app", "a", "", "application name")
	cmd.Flags().StringVarP(&event.DeploymentID, "deployment-id", "d", "", "deployment id, used as backup id (default: current time)")
	cmd.Flags().StringVar(&event.LifecycleEventHookExecutionID, "hook-id", "", "lifecycle hook execution id to acknowledge")
	return cmd
}

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	var event domain.Event

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the database from a stored archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			event.Action = domain.ActionValue(domain.ActionRestore)
			return invoke(cmd.Context(), opts, event)
		},
	}

	cmd.Flags().StringVarP(&event.ApplicationName, "app", "a", "", "application name")
	cmd.Flags().StringVarP(&event.DeploymentID, "backup-id", "b", "", "backup id to restore")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("backup-id")
	return cmd
}

func readEvent(path string, stdin io.Reader) (domain.Event, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return domain.Event{}, fmt.Errorf("open event: %w", err)
		}
		defer f.Close()
		r = f
	}

	var event domain.Event
	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

// invoke records the hook's exit code instead of returning its error, so
// cobra only reports setup failures.
func invoke(ctx context.Context, opts *rootOptions, event domain.Event) error {
	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.App.LogLevel = opts.logLevel
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.App.LogLevel,
		File:   cfg.App.LogFile,
		Format: cfg.App.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Close()
		return fmt.Errorf("initialize app: %w", err)
	}
	defer application.Shutdown()

	result := application.Handle(ctx, event)
	opts.exitCode = result.ExitCode()
	return nil
}

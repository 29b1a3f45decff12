package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	StorageS3     = "s3"
	StorageLocal  = "local"
	StorageGDrive = "gdrive"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Transfer TransferConfig `mapstructure:"transfer"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name      string `mapstructure:"name"`
	LogLevel  string `mapstructure:"log_level"`
	LogFile   string `mapstructure:"log_file"`
	LogFormat string `mapstructure:"log_format"`
}

type AWSConfig struct {
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`

	// Endpoint overrides the S3 endpoint (MinIO, R2, localstack).
	Endpoint string `mapstructure:"endpoint"`
}

type StorageConfig struct {
	Type string `mapstructure:"type"`

	// AWS S3
	Bucket      string `mapstructure:"bucket"`
	PartSizeMB  int64  `mapstructure:"part_size_mb"`
	Concurrency int    `mapstructure:"concurrency"`

	// Local
	LocalPath string `mapstructure:"local_path"`

	// Google Drive
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`
}

type SecretsConfig struct {
	SecretID string `mapstructure:"secret_id"`
	Field    string `mapstructure:"field"`
}

type ToolsConfig struct {
	// BinDir holds the dump/restore binaries. Empty means the directory of
	// the running executable.
	BinDir  string `mapstructure:"bin_dir"`
	Dump    string `mapstructure:"dump"`
	Restore string `mapstructure:"restore"`
}

type TransferConfig struct {
	ProgressEveryMB int64 `mapstructure:"progress_every_mb"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

var envBindings = map[string][]string{
	"app.log_level":              {"LOG_LEVEL"},
	"app.log_file":               {"LOG_FILE"},
	"app.log_format":             {"LOG_FORMAT"},
	"aws.region":                 {"AWS_REGION", "AWS_DEFAULT_REGION"},
	"aws.endpoint":               {"AWS_ENDPOINT_URL_S3"},
	"storage.type":               {"STORAGE_TYPE"},
	"storage.bucket":             {"BUCKET_NAME"},
	"storage.local_path":         {"BACKUP_LOCAL_PATH"},
	"secrets.secret_id":          {"MONGO_URI_SECRET_ID"},
	"secrets.field":              {"MONGO_URI_SECRET_FIELD"},
	"tools.bin_dir":              {"TOOLS_BIN_DIR"},
	"telegram.enabled":           {"TELEGRAM_ENABLED"},
	"telegram.bot_token":         {"TELEGRAM_BOT_TOKEN"},
	"telegram.chat_id":           {"TELEGRAM_CHAT_ID"},
	"metrics.pushgateway_url":    {"PUSHGATEWAY_URL"},
	"transfer.progress_every_mb": {"PROGRESS_EVERY_MB"},
}

// Load reads defaults, then the optional YAML file at path, then the
// environment. Environment values win.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "dbhook")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "console")
	v.SetDefault("storage.type", StorageS3)
	v.SetDefault("storage.part_size_mb", 5)
	v.SetDefault("storage.concurrency", 5)
	v.SetDefault("secrets.field", "mongo_uri")
	v.SetDefault("tools.dump", "mongodump")
	v.SetDefault("tools.restore", "mongorestore")
	v.SetDefault("transfer.progress_every_mb", 5)
	v.SetDefault("metrics.job", "dbhook")

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.Type = strings.ToLower(strings.TrimSpace(cfg.Storage.Type))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Secrets.SecretID == "" {
		return fmt.Errorf("secrets.secret_id is required (MONGO_URI_SECRET_ID)")
	}
	if c.Secrets.Field == "" {
		return fmt.Errorf("secrets.field is required")
	}
	if c.AWS.Region == "" {
		return fmt.Errorf("aws.region is required (AWS_REGION)")
	}

	switch c.Storage.Type {
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required (BUCKET_NAME)")
		}
	case StorageLocal:
		if c.Storage.LocalPath == "" {
			return fmt.Errorf("storage.local_path is required for local storage")
		}
	case StorageGDrive:
		if c.Storage.CredentialsFile == "" || c.Storage.FolderID == "" {
			return fmt.Errorf("storage.credentials_file and storage.folder_id are required for gdrive storage")
		}
	default:
		return fmt.Errorf("unknown storage.type: %q", c.Storage.Type)
	}

	if c.Tools.Dump == "" || c.Tools.Restore == "" {
		return fmt.Errorf("tools.dump and tools.restore are required")
	}

	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id are required when telegram is enabled")
	}

	return nil
}

// ToolsDir resolves where the dump/restore binaries live.
func (c *Config) ToolsDir() (string, error) {
	if c.Tools.BinDir != "" {
		return c.Tools.BinDir, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	return filepath.Dir(exe), nil
}

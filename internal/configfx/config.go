package configfx

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/filebutler/filebutler/pkg/domain"
	"github.com/filebutler/filebutler/pkg/remote"
)

// ConfigError is fatal at startup, before any side effect. Nothing gets
// scanned, moved or deleted under a malformed configuration.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.msg
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

type StorageConfig struct {
	Provider string
	Timeout  time.Duration

	LocalPath string
	S3        remote.ObjectStoreConfig
}

// Config is the single immutable configuration object. It is constructed
// once at startup and handed to every component; nothing reads ambient
// global state.
type Config struct {
	BaseDir  string
	DropZone string

	// Categories maps category name to destination directory; Rules maps
	// a file extension (leading dot, case-insensitive) to a category.
	Categories map[string]string
	Rules      map[string]string
	Fallback   string

	BackupDir  string
	ArchiveDir string
	Prefix     string
	Excludes   []string

	Retention domain.RetentionPolicy

	Storage StorageConfig

	Schedule map[string]string
}

func ConfigProvider(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BaseDir:    v.GetString("base_dir"),
		DropZone:   v.GetString("dropzone"),
		Categories: v.GetStringMapString("categories"),
		Rules:      v.GetStringMapString("routing.rules"),
		Fallback:   v.GetString("routing.fallback"),
		BackupDir:  v.GetString("backup.directory"),
		Prefix:     v.GetString("backup.prefix"),
		Excludes:   v.GetStringSlice("backup.exclude"),
		Retention: domain.RetentionPolicy{
			Working:  v.GetInt("retention.working"),
			Archive:  v.GetInt("retention.archive"),
			MinSize:  v.GetInt64("retention.min_size"),
			Interval: v.GetDuration("retention.interval"),
		},
		Storage: StorageConfig{
			Provider:  v.GetString("storage.provider"),
			Timeout:   v.GetDuration("storage.timeout"),
			LocalPath: v.GetString("storage.local.path"),
		},
		Schedule: v.GetStringMapString("schedule"),
	}

	if err := v.UnmarshalKey("storage.s3", &cfg.Storage.S3); err != nil {
		return nil, configErrorf("unable to parse storage.s3: %v", err)
	}

	if cfg.BaseDir == "" {
		return nil, configErrorf("base_dir is required")
	}

	if cfg.DropZone == "" {
		cfg.DropZone = filepath.Join(cfg.BaseDir, "DropZone")
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(cfg.BaseDir, "Backups")
	}
	cfg.ArchiveDir = filepath.Join(cfg.BackupDir, "Archive")

	// Category destinations may be given relative to the base directory.
	for name, dir := range cfg.Categories {
		if !filepath.IsAbs(dir) {
			cfg.Categories[name] = filepath.Join(cfg.BaseDir, dir)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	for ext, category := range c.Rules {
		if _, ok := c.Categories[category]; !ok {
			return configErrorf("routing rule %q points to unknown category %q", ext, category)
		}
	}

	if c.Fallback == "" {
		return configErrorf("routing.fallback is required")
	}

	if c.Prefix == "" {
		return configErrorf("backup.prefix is required")
	}

	if err := c.Retention.Validate(); err != nil {
		return configErrorf("%v", err)
	}

	switch c.Storage.Provider {
	case "local":
		if c.Storage.LocalPath == "" {
			return configErrorf("storage.local.path is required for the local provider")
		}
	case "s3":
		if c.Storage.S3.Endpoint == "" || c.Storage.S3.Bucket == "" {
			return configErrorf("storage.s3.endpoint and storage.s3.bucket are required for the s3 provider")
		}
	default:
		return configErrorf("unknown storage provider %q", c.Storage.Provider)
	}

	if c.Storage.Timeout <= 0 {
		return configErrorf("storage.timeout must be positive")
	}

	for kind := range c.Schedule {
		if _, err := domain.ParseKind(kind); err != nil {
			return configErrorf("schedule: %v", err)
		}
	}

	return nil
}

// FallbackDir is where files of unmapped categories land.
func (c *Config) FallbackDir() string {
	if dir, ok := c.Categories[c.Fallback]; ok {
		return dir
	}
	return filepath.Join(c.BaseDir, "Unclassified")
}

// RequiredFolders is the checklist input for the health reporter.
func (c *Config) RequiredFolders() []string {
	folders := []string{c.BaseDir, c.DropZone, c.BackupDir}

	for _, dir := range c.Categories {
		folders = append(folders, dir)
	}

	return folders
}

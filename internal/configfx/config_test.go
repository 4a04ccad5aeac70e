package configfx

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.Set("base_dir", "/data/acme")
	v.Set("categories", map[string]string{
		"admin":        "Admin",
		"unclassified": "Unclassified",
	})
	v.Set("routing.rules", map[string]string{".pdf": "admin"})
	v.Set("storage.local.path", "/mnt/mirror")

	for key, value := range overrides {
		v.Set(key, value)
	}

	return v
}

func TestConfigProvider_DerivedPaths(t *testing.T) {
	cfg, err := ConfigProvider(testViper(nil))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/acme", "DropZone"), cfg.DropZone)
	assert.Equal(t, filepath.Join("/data/acme", "Backups"), cfg.BackupDir)
	assert.Equal(t, filepath.Join("/data/acme", "Backups", "Archive"), cfg.ArchiveDir)
	assert.Equal(t, filepath.Join("/data/acme", "Admin"), cfg.Categories["admin"])
	assert.Equal(t, filepath.Join("/data/acme", "Unclassified"), cfg.FallbackDir())
}

func TestConfigProvider_AbsoluteCategoryPathKept(t *testing.T) {
	cfg, err := ConfigProvider(testViper(map[string]interface{}{
		"categories": map[string]string{
			"admin":        "/mnt/elsewhere/Admin",
			"unclassified": "Unclassified",
		},
	}))

	require.NoError(t, err)
	assert.Equal(t, "/mnt/elsewhere/Admin", cfg.Categories["admin"])
}

func TestConfigProvider_RequiresBaseDir(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	_, err := ConfigProvider(v)

	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestConfigProvider_RejectsRuleWithUnknownCategory(t *testing.T) {
	_, err := ConfigProvider(testViper(map[string]interface{}{
		"routing.rules": map[string]string{".dwg": "drafting"},
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "drafting")
}

func TestConfigProvider_RejectsUnknownStorageProvider(t *testing.T) {
	_, err := ConfigProvider(testViper(map[string]interface{}{
		"storage.provider": "ftp",
	}))

	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestConfigProvider_LocalProviderNeedsPath(t *testing.T) {
	_, err := ConfigProvider(testViper(map[string]interface{}{
		"storage.local.path": "",
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.local.path")
}

func TestConfigProvider_S3ProviderNeedsEndpointAndBucket(t *testing.T) {
	_, err := ConfigProvider(testViper(map[string]interface{}{
		"storage.provider": "s3",
	}))

	require.Error(t, err)

	cfg, err := ConfigProvider(testViper(map[string]interface{}{
		"storage.provider":    "s3",
		"storage.s3.endpoint": "s3.amazonaws.com",
		"storage.s3.bucket":   "acme-backups",
	}))

	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.Storage.Provider)
	assert.Equal(t, "acme-backups", cfg.Storage.S3.Bucket)
}

func TestConfigProvider_RejectsBadRetention(t *testing.T) {
	_, err := ConfigProvider(testViper(map[string]interface{}{
		"retention.working": 0,
	}))

	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestConfigProvider_RejectsUnknownScheduleKind(t *testing.T) {
	_, err := ConfigProvider(testViper(map[string]interface{}{
		"schedule": map[string]string{"hourly": "0 * * * *"},
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule")
}

func TestConfigProvider_Defaults(t *testing.T) {
	cfg, err := ConfigProvider(testViper(nil))

	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Storage.Timeout)
	assert.Equal(t, "unclassified", cfg.Fallback)
	assert.GreaterOrEqual(t, cfg.Retention.Working, 1)
}

func TestConfig_RequiredFoldersCoversCategories(t *testing.T) {
	cfg, err := ConfigProvider(testViper(nil))
	require.NoError(t, err)

	folders := cfg.RequiredFolders()

	assert.Contains(t, folders, cfg.BaseDir)
	assert.Contains(t, folders, cfg.DropZone)
	assert.Contains(t, folders, cfg.BackupDir)
	assert.Contains(t, folders, cfg.Categories["admin"])
}

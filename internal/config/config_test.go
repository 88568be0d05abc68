package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

identity:
  user_pool_id: "ap-southeast-1_r5HpqqhcN"
  client_id: "test-client-id"
  default_password: "Train!ng2024"

store:
  region: "ap-southeast-1"
  employees_table: "Test-Employees"

reports:
  bucket: "test-reports"
  download_ttl_seconds: 120

mail:
  region: "us-east-1"
  sender_email: "sim@test.local"

tracking:
  delivery_domain: "d28hvr7wd2iqek.cloudfront.net"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "ap-southeast-1_r5HpqqhcN", cfg.Identity.UserPoolID)
	assert.Equal(t, "ap-southeast-1", cfg.Identity.PoolRegion())

	// Explicit values survive, gaps are defaulted
	assert.Equal(t, "Test-Employees", cfg.Store.EmployeesTable)
	assert.Equal(t, "ThinkBeforeClick-Users", cfg.Store.UsersTable)
	assert.Equal(t, "CompanyIndex", cfg.Store.CompanyIndex)
	assert.Equal(t, "enterprise/report/", cfg.Reports.Prefix)
	assert.Equal(t, 120, cfg.Reports.DownloadTTLSeconds)
	assert.Equal(t, 3600, cfg.Reports.UploadTTLSeconds)
	assert.Equal(t, "sim@test.local", cfg.Mail.SenderEmail)
	assert.Equal(t, "d28hvr7wd2iqek.cloudfront.net", cfg.Tracking.DeliveryDomain)
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 0\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 300, cfg.Reports.DownloadTTLSeconds)
	assert.Equal(t, "noreply@thinkbeforeclick.com", cfg.Mail.SenderEmail)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestPoolRegionFallback(t *testing.T) {
	c := IdentityConfig{UserPoolID: "nounderscore", Region: "us-west-2"}
	assert.Equal(t, "us-west-2", c.PoolRegion())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 8080\n"), 0644))

	t.Setenv("CONFIG_PATH", configPath)
	t.Setenv("REPORTS_BUCKET", "env-bucket")
	t.Setenv("EMPLOYEES_TABLE", "Env-Employees")
	t.Setenv("DELIVERY_DOMAIN", "cdn.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "env-bucket", cfg.Reports.Bucket)
	assert.Equal(t, "Env-Employees", cfg.Store.EmployeesTable)
	assert.Equal(t, "cdn.example.com", cfg.Tracking.DeliveryDomain)
}

func TestLoadFromEnvMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("COGNITO_USER_POOL_ID", "ap-southeast-1_TestPool")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ap-southeast-1_TestPool", cfg.Identity.UserPoolID)
}

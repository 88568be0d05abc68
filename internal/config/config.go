package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the platform.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Identity IdentityConfig `yaml:"identity"`
	Store    StoreConfig    `yaml:"store"`
	Reports  ReportsConfig  `yaml:"reports"`
	Mail     MailConfig     `yaml:"mail"`
	Tracking TrackingConfig `yaml:"tracking"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection.
func (c ServerConfig) GetHost() string {
	// On ECS/Lambda, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// IdentityConfig holds identity-provider (Cognito user pool) configuration.
type IdentityConfig struct {
	UserPoolID      string `yaml:"user_pool_id"`
	ClientID        string `yaml:"client_id"`
	DefaultPassword string `yaml:"default_password"`
	Region          string `yaml:"region"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c IdentityConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PoolRegion returns the region the user pool lives in. Pool ids embed
// their region ("ap-southeast-1_AbCdEf"), which wins over the configured one.
func (c IdentityConfig) PoolRegion() string {
	if i := strings.Index(c.UserPoolID, "_"); i > 0 {
		return c.UserPoolID[:i]
	}
	return c.Region
}

// StoreConfig holds document-store (DynamoDB) configuration.
type StoreConfig struct {
	Region             string `yaml:"region"`
	AWSProfile         string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role)
	UsersTable         string `yaml:"users_table"`
	CompaniesTable     string `yaml:"companies_table"`
	EmployeesTable     string `yaml:"employees_table"`
	TrackingTable      string `yaml:"tracking_table"`
	ScamClicksTable    string `yaml:"scam_clicks_table"`
	CompanyCodesTable  string `yaml:"company_codes_table"`
	CompanyIndex       string `yaml:"company_index"`
}

// GetAWSProfile returns the AWS profile, with environment variable override.
func (c StoreConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return "" // Use default credential chain (IAM role)
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// ReportsConfig holds report artifact (S3) configuration.
type ReportsConfig struct {
	Bucket             string `yaml:"bucket"`
	Prefix             string `yaml:"prefix"`
	Region             string `yaml:"region"`
	DownloadTTLSeconds int    `yaml:"download_ttl_seconds"`
	UploadTTLSeconds   int    `yaml:"upload_ttl_seconds"`
}

// DownloadTTL returns the presigned download URL lifetime.
func (c ReportsConfig) DownloadTTL() time.Duration {
	return time.Duration(c.DownloadTTLSeconds) * time.Second
}

// UploadTTL returns the presigned URL lifetime issued after an upload.
func (c ReportsConfig) UploadTTL() time.Duration {
	return time.Duration(c.UploadTTLSeconds) * time.Second
}

// MailConfig holds outbound mail (SES) configuration.
type MailConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	SenderEmail    string `yaml:"sender_email"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c MailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TrackingConfig holds simulation link configuration.
type TrackingConfig struct {
	// DeliveryDomain hosts the static phishing template pages the emailed
	// link points at (a CDN domain in production).
	DeliveryDomain string `yaml:"delivery_domain"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Identity.TimeoutSeconds == 0 {
		cfg.Identity.TimeoutSeconds = 30
	}
	if cfg.Store.Region == "" {
		cfg.Store.Region = "ap-southeast-1"
	}
	if cfg.Store.UsersTable == "" {
		cfg.Store.UsersTable = "ThinkBeforeClick-Users"
	}
	if cfg.Store.CompaniesTable == "" {
		cfg.Store.CompaniesTable = "ThinkBeforeClick-Companies"
	}
	if cfg.Store.EmployeesTable == "" {
		cfg.Store.EmployeesTable = "ThinkBeforeClick-Employees"
	}
	if cfg.Store.TrackingTable == "" {
		cfg.Store.TrackingTable = "ThinkBeforeClick-EmailTracking"
	}
	if cfg.Store.ScamClicksTable == "" {
		cfg.Store.ScamClicksTable = "ThinkBeforeClick-ScamClicks"
	}
	if cfg.Store.CompanyCodesTable == "" {
		cfg.Store.CompanyCodesTable = "ThinkBeforeClick-CompanyVerificationCodes"
	}
	if cfg.Store.CompanyIndex == "" {
		cfg.Store.CompanyIndex = "CompanyIndex"
	}
	if cfg.Reports.Prefix == "" {
		cfg.Reports.Prefix = "enterprise/report/"
	}
	if cfg.Reports.Region == "" {
		cfg.Reports.Region = cfg.Store.Region
	}
	if cfg.Reports.DownloadTTLSeconds == 0 {
		cfg.Reports.DownloadTTLSeconds = 300
	}
	if cfg.Reports.UploadTTLSeconds == 0 {
		cfg.Reports.UploadTTLSeconds = 3600
	}
	if cfg.Mail.Region == "" {
		cfg.Mail.Region = "us-east-1"
	}
	if cfg.Mail.TimeoutSeconds == 0 {
		cfg.Mail.TimeoutSeconds = 30
	}
	if cfg.Mail.SenderEmail == "" {
		cfg.Mail.SenderEmail = "noreply@thinkbeforeclick.com"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars when deployed.
// The YAML file named by CONFIG_PATH (default config.yaml) is optional;
// when absent the built-in defaults apply and env vars carry everything.
func LoadFromEnv() (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = &Config{}
		applyDefaults(cfg)
	} else if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if v := os.Getenv("COGNITO_USER_POOL_ID"); v != "" {
		cfg.Identity.UserPoolID = v
	}
	if v := os.Getenv("COGNITO_CLIENT_ID"); v != "" {
		cfg.Identity.ClientID = v
	}
	if v := os.Getenv("COGNITO_DEFAULT_PASSWORD"); v != "" {
		cfg.Identity.DefaultPassword = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Store.Region = v
		if cfg.Identity.Region == "" {
			cfg.Identity.Region = v
		}
	}
	if v := os.Getenv("USERS_TABLE"); v != "" {
		cfg.Store.UsersTable = v
	}
	if v := os.Getenv("COMPANIES_TABLE"); v != "" {
		cfg.Store.CompaniesTable = v
	}
	if v := os.Getenv("EMPLOYEES_TABLE"); v != "" {
		cfg.Store.EmployeesTable = v
	}
	if v := os.Getenv("EMAIL_TRACKING_TABLE"); v != "" {
		cfg.Store.TrackingTable = v
	}
	if v := os.Getenv("SCAM_CLICKS_TABLE"); v != "" {
		cfg.Store.ScamClicksTable = v
	}
	if v := os.Getenv("COMPANY_CODES_TABLE"); v != "" {
		cfg.Store.CompanyCodesTable = v
	}
	if v := os.Getenv("REPORTS_BUCKET"); v != "" {
		cfg.Reports.Bucket = v
	}
	if v := os.Getenv("REPORTS_PREFIX"); v != "" {
		cfg.Reports.Prefix = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Mail.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Mail.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Mail.Region = v
	}
	if v := os.Getenv("SENDER_EMAIL"); v != "" {
		cfg.Mail.SenderEmail = v
	}
	if v := os.Getenv("DELIVERY_DOMAIN"); v != "" {
		cfg.Tracking.DeliveryDomain = v
	}

	return cfg, nil
}

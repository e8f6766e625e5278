package config

import (
	"errors"
	"fmt"
	"log"
	"net/netip"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is read from the environment (optionally seeded from a .env file).
// Keys map 1:1 to upper-cased environment variable names.
type Config struct {
	Port string `mapstructure:"port"`

	DatabaseURL string `mapstructure:"db_url"`

	// Object storage. S3Endpoint and the static keys are only needed for
	// S3-compatible providers such as Backblaze B2.
	AWSRegion         string        `mapstructure:"aws_region"`
	BucketName        string        `mapstructure:"aws_bucket_name"`
	S3Endpoint        string        `mapstructure:"s3_endpoint"`
	S3AccessKeyID     string        `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string        `mapstructure:"s3_secret_access_key"`
	SignedURLTTL      time.Duration `mapstructure:"signed_url_ttl"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes"`

	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`

	SessionSecret      string `mapstructure:"session_secret"`
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string `mapstructure:"google_redirect_url"`
	GitHubClientID     string `mapstructure:"github_client_id"`
	GitHubClientSecret string `mapstructure:"github_client_secret"`
	GitHubRedirectURL  string `mapstructure:"github_redirect_url"`

	// BaseURL is the frontend origin; public links and OAuth redirects point there.
	BaseURL     string   `mapstructure:"base_url"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	// TrustedProxies lists the IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the peer address is always the client address.
	TrustedProxies []string `mapstructure:"trusted_proxies"`

	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	LogLevel      string `mapstructure:"log_level"`
	LogProduction bool   `mapstructure:"log_production"`
	LogFile       string `mapstructure:"log_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_url", "")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_bucket_name", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")
	v.SetDefault("signed_url_ttl", time.Hour)
	v.SetDefault("max_upload_bytes", int64(50<<20))
	v.SetDefault("jwt_secret", "")
	v.SetDefault("access_token_ttl", 15*time.Minute)
	v.SetDefault("refresh_token_ttl", 30*24*time.Hour)
	v.SetDefault("session_secret", "")
	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")
	v.SetDefault("google_redirect_url", "")
	v.SetDefault("github_client_id", "")
	v.SetDefault("github_client_secret", "")
	v.SetDefault("github_redirect_url", "")
	v.SetDefault("base_url", "http://localhost:5173")
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("rate_limit_rps", 5.0)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_production", false)
	v.SetDefault("log_file", "")
}

// Load reads the configuration. Outside Render a local .env file is loaded
// first; variables already present in the environment win.
func Load() (*Config, error) {
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: no .env file found, using system environment variables")
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DB_URL is not set"))
	}
	if c.BucketName == "" {
		errs = append(errs, errors.New("AWS_BUCKET_NAME is not set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.SignedURLTTL <= 0 {
		errs = append(errs, fmt.Errorf("SIGNED_URL_TTL must be positive, got %s", c.SignedURLTTL))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy))
		}
	}
	return errors.Join(errs...)
}

func validProxy(proxy string) bool {
	if _, err := netip.ParsePrefix(proxy); err == nil {
		return true
	}
	_, err := netip.ParseAddr(proxy)
	return err == nil
}

// OAuthEnabled reports whether at least one OAuth provider is configured.
func (c *Config) OAuthEnabled() bool {
	return c.SessionSecret != "" && (c.GoogleClientID != "" || c.GitHubClientID != "")
}

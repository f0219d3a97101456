package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
	}
	DB struct {
		Driver string
		DSN    string
	}
	// Secrets are read once at startup and handed to the components that
	// need them. HashSecret keys password hashes; TokenSecret signs tokens.
	Secrets struct {
		HashSecret  string
		TokenSecret string
	}
	Log struct {
		Level  string
		Format string
	}
	// OIDC is optional. External login routes are mounted only when Issuer is set.
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	CORSOrigins     []string
	SessionLifetime time.Duration
	InsecureCookies bool
}

// OIDCEnabled reports whether external (OIDC) login is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDC.Issuer != ""
}

// Load reads config from environment (LINKHUB_ prefix) and optional linkhub.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("linkhub")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("session.lifetime", "10m")
	v.SetDefault("cors.origins", "*")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Secrets.HashSecret = v.GetString("secrets.hash")
	cfg.Secrets.TokenSecret = v.GetString("secrets.token")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	for _, o := range strings.Split(v.GetString("cors.origins"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	var err error
	if cfg.HTTP.ReadTimeout, err = time.ParseDuration(v.GetString("http.read_timeout")); err != nil {
		return nil, fmt.Errorf("invalid LINKHUB_HTTP_READ_TIMEOUT: %w", err)
	}
	if cfg.HTTP.WriteTimeout, err = time.ParseDuration(v.GetString("http.write_timeout")); err != nil {
		return nil, fmt.Errorf("invalid LINKHUB_HTTP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.SessionLifetime, err = time.ParseDuration(v.GetString("session.lifetime")); err != nil {
		return nil, fmt.Errorf("invalid LINKHUB_SESSION_LIFETIME: %w", err)
	}

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("LINKHUB_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("LINKHUB_DB_DSN is required")
	}
	if cfg.Secrets.HashSecret == "" {
		return nil, fmt.Errorf("LINKHUB_SECRETS_HASH is required")
	}
	if cfg.Secrets.TokenSecret == "" {
		return nil, fmt.Errorf("LINKHUB_SECRETS_TOKEN is required")
	}
	if cfg.Secrets.HashSecret == cfg.Secrets.TokenSecret {
		return nil, fmt.Errorf("LINKHUB_SECRETS_HASH and LINKHUB_SECRETS_TOKEN must differ")
	}

	if cfg.OIDCEnabled() {
		if cfg.OIDC.ClientID == "" {
			return nil, fmt.Errorf("LINKHUB_OIDC_CLIENT_ID is required when LINKHUB_OIDC_ISSUER is set")
		}
		if cfg.OIDC.ClientSecret == "" {
			return nil, fmt.Errorf("LINKHUB_OIDC_CLIENT_SECRET is required when LINKHUB_OIDC_ISSUER is set")
		}
		if cfg.OIDC.RedirectURL == "" {
			return nil, fmt.Errorf("LINKHUB_OIDC_REDIRECT_URL is required when LINKHUB_OIDC_ISSUER is set")
		}
	}

	return cfg, nil
}

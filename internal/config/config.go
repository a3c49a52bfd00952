package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// API variants selectable with BOOKMARKS_API_VARIANT.
const (
	VariantREST     = "rest"
	VariantHATEOAS  = "hateoas"
	VariantSession  = "session"
	VariantDataREST = "data-rest"
)

type Config struct {
	HTTP struct {
		Addr            string
		BaseURL         string
		ShutdownTimeout time.Duration
	}
	DB struct {
		Driver string
		DSN    string
	}
	API struct {
		Variant string
	}
	Session struct {
		Store    string // "sql" or "redis"
		Lifetime time.Duration
		Header   string
	}
	Redis struct {
		Addr           string
		Password       string
		DB             int
		ConnectTimeout time.Duration
	}
	OAuth struct {
		ClientID     string
		ClientSecret string
		Scopes       []string
		TokenTTL     time.Duration
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	Log struct {
		Level  string
		Pretty bool
	}
	Seed bool
}

// OIDCEnabled reports whether OIDC login is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDC.Issuer != ""
}

// Load reads config from environment (BOOKMARKS_ prefix) and optional bookmarks.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKMARKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("bookmarks")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("api.variant", VariantHATEOAS)
	v.SetDefault("session.store", "sql")
	v.SetDefault("session.lifetime", "24h")
	v.SetDefault("session.header", "X-Auth-Token")
	v.SetDefault("redis.connect_timeout", "30s")
	v.SetDefault("oauth.client_id", "android-bookmarks")
	v.SetDefault("oauth.scopes", "write")
	v.SetDefault("oauth.token_ttl", "12h")
	v.SetDefault("log.level", "info")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.BaseURL = strings.TrimSuffix(v.GetString("http.base_url"), "/")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.API.Variant = v.GetString("api.variant")
	cfg.Session.Store = v.GetString("session.store")
	cfg.Session.Header = v.GetString("session.header")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.OAuth.ClientID = v.GetString("oauth.client_id")
	cfg.OAuth.ClientSecret = v.GetString("oauth.client_secret")
	cfg.OAuth.Scopes = splitList(v.GetString("oauth.scopes"))
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Pretty = v.GetBool("log.pretty")
	cfg.Seed = v.GetBool("seed")

	var err error
	if cfg.HTTP.ShutdownTimeout, err = duration(v, "http.shutdown_timeout"); err != nil {
		return nil, err
	}
	if cfg.Session.Lifetime, err = duration(v, "session.lifetime"); err != nil {
		return nil, err
	}
	if cfg.Redis.ConnectTimeout, err = duration(v, "redis.connect_timeout"); err != nil {
		return nil, err
	}
	if cfg.OAuth.TokenTTL, err = duration(v, "oauth.token_ttl"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.Driver == "" {
		return fmt.Errorf("BOOKMARKS_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("BOOKMARKS_DB_DSN is required")
	}

	switch c.API.Variant {
	case VariantREST, VariantHATEOAS, VariantSession, VariantDataREST:
	default:
		return fmt.Errorf("invalid BOOKMARKS_API_VARIANT %q: must be rest, hateoas, session, or data-rest", c.API.Variant)
	}

	switch c.Session.Store {
	case "sql":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("BOOKMARKS_REDIS_ADDR is required when BOOKMARKS_SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("invalid BOOKMARKS_SESSION_STORE %q: must be sql or redis", c.Session.Store)
	}

	if c.API.Variant == VariantSession && c.OAuth.ClientSecret == "" {
		return fmt.Errorf("BOOKMARKS_OAUTH_CLIENT_SECRET is required for the session variant")
	}

	// OIDC is optional, but a partial configuration is a mistake.
	if c.OIDCEnabled() {
		if c.OIDC.ClientID == "" {
			return fmt.Errorf("BOOKMARKS_OIDC_CLIENT_ID is required when BOOKMARKS_OIDC_ISSUER is set")
		}
		if c.OIDC.ClientSecret == "" {
			return fmt.Errorf("BOOKMARKS_OIDC_CLIENT_SECRET is required when BOOKMARKS_OIDC_ISSUER is set")
		}
		if c.OIDC.RedirectURL == "" {
			return fmt.Errorf("BOOKMARKS_OIDC_REDIRECT_URL is required when BOOKMARKS_OIDC_ISSUER is set")
		}
	}
	return nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		env := "BOOKMARKS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		return 0, fmt.Errorf("invalid %s: %w", env, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port    string
	GinMode string

	DatabaseURL string

	RedisURL      string
	RedisPassword string

	TokenSecret      string
	TokenTTL         time.Duration
	ExposeResetToken bool

	LogLevel string
	LogFile  string

	CORSOrigins []string

	// TrustedProxies may set X-Forwarded-For; empty means the remote
	// address is the client IP.
	TrustedProxies []string

	UseHTTPS    bool
	TLSCertFile string
	TLSKeyFile  string

	RateLimitRPS   float64
	RateLimitBurst int
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("access_token_secret", "")
	v.SetDefault("token_ttl", "72h")
	v.SetDefault("expose_reset_token", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("trusted_proxies", "")
	v.SetDefault("use_https", false)
	v.SetDefault("tls_cert_file", "")
	v.SetDefault("tls_key_file", "")
	v.SetDefault("rate_limit_rps", 5)
	v.SetDefault("rate_limit_burst", 10)
}

// Load reads .env (if present), the optional config file and the
// environment, in increasing order of precedence.
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	ttl, err := time.ParseDuration(v.GetString("token_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid token_ttl: %w", err)
	}

	cfg := &Config{
		Port:             v.GetString("port"),
		GinMode:          v.GetString("gin_mode"),
		DatabaseURL:      v.GetString("database_url"),
		RedisURL:         v.GetString("redis_url"),
		RedisPassword:    v.GetString("redis_password"),
		TokenSecret:      v.GetString("access_token_secret"),
		TokenTTL:         ttl,
		ExposeResetToken: v.GetBool("expose_reset_token"),
		LogLevel:         v.GetString("log_level"),
		LogFile:          v.GetString("log_file"),
		CORSOrigins:      splitList(v.GetString("cors_origins")),
		TrustedProxies:   splitList(v.GetString("trusted_proxies")),
		UseHTTPS:         v.GetBool("use_https"),
		TLSCertFile:      v.GetString("tls_cert_file"),
		TLSKeyFile:       v.GetString("tls_key_file"),
		RateLimitRPS:     v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:   v.GetInt("rate_limit_burst"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TokenSecret == "" {
		if c.IsRelease() {
			return fmt.Errorf("ACCESS_TOKEN_SECRET is required in release mode")
		}
		c.TokenSecret = "gameflix-dev-secret"
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.UseHTTPS && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return fmt.Errorf("USE_HTTPS requires TLS_CERT_FILE and TLS_KEY_FILE")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return fmt.Errorf("invalid trusted proxy %q", p)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

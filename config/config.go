// Package config resolves server settings from defaults, an optional config
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileEnv names a config file when --config is not given.
const FileEnv = "CONNECTLY_CONFIG"

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port               string
	MongoURI           string
	DBName             string
	StoreDriver        string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	AllowedOrigins     []string
	CookieSecure       bool
	HostName           string
	RequestTimeout     time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("DB_NAME", "connectly")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("ACCESS_TOKEN_SECRET", "")
	v.SetDefault("REFRESH_TOKEN_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("HOST_NAME", "")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
}

// Load builds the configuration. file may be empty, in which case
// CONNECTLY_CONFIG is consulted; with neither, defaults and env apply.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file == "" {
		file = os.Getenv(FileEnv)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:               v.GetString("PORT"),
		MongoURI:           v.GetString("MONGO_URI"),
		DBName:             v.GetString("DB_NAME"),
		StoreDriver:        strings.ToLower(v.GetString("STORE_DRIVER")),
		AccessTokenSecret:  v.GetString("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: v.GetString("REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:     v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:    v.GetDuration("REFRESH_TOKEN_TTL"),
		AllowedOrigins:     origins(v.Get("ALLOWED_ORIGINS")),
		CookieSecure:       v.GetBool("COOKIE_SECURE"),
		HostName:           v.GetString("HOST_NAME"),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),
	}
	return cfg, nil
}

// origins accepts either a comma separated string (env) or a list (file).
func origins(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must be set"))
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI must be set for the mongo driver"))
		}
		if c.DBName == "" {
			errs = append(errs, errors.New("DB_NAME must be set for the mongo driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET must be set"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET must be set"))
	}
	for _, o := range c.AllowedOrigins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("allowed origin %q must start with http:// or https://", o))
		}
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	return errors.Join(errs...)
}

// Package config loads settings for the catalog CLI and the catalog service
// from defaults, an optional config file, environment variables and flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid configuration")

type Client struct {
	BaseURL        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Token          string
	LogLevel       string
}

type Server struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	MetricsEnabled bool
	MetricsToken   string

	WriteRateLimit  int
	WriteRateWindow time.Duration

	LogLevel string
}

// Keys map to environment variables with dots replaced by underscores,
// so catalog.base_url is read from CATALOG_BASE_URL.
const (
	keyBaseURL        = "catalog.base_url"
	keyConnectTimeout = "catalog.connect_timeout"
	keyReadTimeout    = "catalog.read_timeout"
	keyToken          = "catalog.token"
	keyLogLevel       = "log.level"

	keyPort            = "port"
	keyDatabaseURL     = "database.url"
	keyJWTSecret       = "jwt.secret"
	keyMetricsEnabled  = "metrics.enabled"
	keyMetricsToken    = "metrics.token"
	keyWriteRateLimit  = "write.rate_limit"
	keyWriteRateWindow = "write.rate_window"
)

// clientFlags maps viper keys to the flag names cmd/catalogctl registers.
var clientFlags = map[string]string{
	keyBaseURL:        "base-url",
	keyConnectTimeout: "connect-timeout",
	keyReadTimeout:    "read-timeout",
	keyToken:          "token",
	keyLogLevel:       "log-level",
}

var serverFlags = map[string]string{
	keyPort:        "port",
	keyDatabaseURL: "database-url",
	keyLogLevel:    "log-level",
}

// LoadClient reads client settings. file may be empty. fs may be nil; flags
// it defines that the user actually set override everything else.
func LoadClient(file string, fs *pflag.FlagSet) (Client, error) {
	v := viper.New()
	v.SetDefault(keyBaseURL, "https://fakestores.vercel.app/api")
	v.SetDefault(keyConnectTimeout, 10*time.Second)
	v.SetDefault(keyReadTimeout, 10*time.Second)
	v.SetDefault(keyToken, "")
	v.SetDefault(keyLogLevel, "warn")

	if err := prepare(v, file, fs, clientFlags); err != nil {
		return Client{}, err
	}

	c := Client{
		BaseURL:        strings.TrimSpace(v.GetString(keyBaseURL)),
		ConnectTimeout: v.GetDuration(keyConnectTimeout),
		ReadTimeout:    v.GetDuration(keyReadTimeout),
		Token:          v.GetString(keyToken),
		LogLevel:       v.GetString(keyLogLevel),
	}

	switch {
	case c.BaseURL == "":
		return Client{}, fmt.Errorf("%w: %s is empty", ErrInvalid, keyBaseURL)
	case c.ConnectTimeout <= 0:
		return Client{}, fmt.Errorf("%w: %s must be positive", ErrInvalid, keyConnectTimeout)
	case c.ReadTimeout <= 0:
		return Client{}, fmt.Errorf("%w: %s must be positive", ErrInvalid, keyReadTimeout)
	}
	return c, nil
}

func LoadServer(file string, fs *pflag.FlagSet) (Server, error) {
	v := viper.New()
	v.SetDefault(keyPort, "8082")
	v.SetDefault(keyDatabaseURL, "")
	v.SetDefault(keyJWTSecret, "")
	v.SetDefault(keyMetricsEnabled, false)
	v.SetDefault(keyMetricsToken, "")
	v.SetDefault(keyWriteRateLimit, 60)
	v.SetDefault(keyWriteRateWindow, time.Minute)
	v.SetDefault(keyLogLevel, "info")

	if err := prepare(v, file, fs, serverFlags); err != nil {
		return Server{}, err
	}

	s := Server{
		Port:            strings.TrimPrefix(strings.TrimSpace(v.GetString(keyPort)), ":"),
		DatabaseURL:     v.GetString(keyDatabaseURL),
		JWTSecret:       v.GetString(keyJWTSecret),
		MetricsEnabled:  v.GetBool(keyMetricsEnabled),
		MetricsToken:    v.GetString(keyMetricsToken),
		WriteRateLimit:  v.GetInt(keyWriteRateLimit),
		WriteRateWindow: v.GetDuration(keyWriteRateWindow),
		LogLevel:        v.GetString(keyLogLevel),
	}

	if s.Port == "" {
		return Server{}, fmt.Errorf("%w: %s is empty", ErrInvalid, keyPort)
	}
	if s.WriteRateLimit > 0 && s.WriteRateWindow <= 0 {
		return Server{}, fmt.Errorf("%w: %s must be positive", ErrInvalid, keyWriteRateWindow)
	}
	return s, nil
}

func prepare(v *viper.Viper, file string, fs *pflag.FlagSet, flags map[string]string) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
	}

	if fs == nil {
		return nil
	}
	for key, name := range flags {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

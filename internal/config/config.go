package config

import (
	"errors"
	"fmt"
	"io/fs"
	"location-capture-service/internal/domain"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	SourceGpsd   = "gpsd"
	SourceStatic = "static"

	// Asks on the terminal; only the CLI can serve it.
	PermissionPrompt = "prompt"
)

// Config holds process settings read from the environment.
type Config struct {
	DBPath    string
	PrefsPath string
	BindAddr  string
	Port      int

	LogLevel  string
	LogFormat string

	PositionSource  string
	GpsdAddr        string
	StaticLatitude  float64
	StaticLongitude float64
	Permission      string
	SampleTimeout   time.Duration
}

// NewViper returns a viper instance reading the environment, with defaults.
// Keys are the lower-cased environment variable names.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("db_path", "data/locations.db")
	v.SetDefault("prefs_path", "data/preferences.yaml")
	v.SetDefault("bind_addr", "127.0.0.1")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("position_source", SourceStatic)
	v.SetDefault("gpsd_addr", "127.0.0.1:2947")
	v.SetDefault("static_latitude", "0")
	v.SetDefault("static_longitude", "0")
	v.SetDefault("location_permission", string(domain.PermissionGranted))
	v.SetDefault("sample_timeout", "30s")

	return v
}

// Load reads .env (when present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load config: read .env: %w", err)
	}
	return FromViper(NewViper())
}

// FromViper builds and validates a Config.
func FromViper(v *viper.Viper) (Config, error) {
	port, err := strconv.Atoi(strings.TrimSpace(v.GetString("port")))
	if err != nil {
		return Config{}, fmt.Errorf("load config: PORT: %w", err)
	}
	lat, err := parseFloat(v, "static_latitude")
	if err != nil {
		return Config{}, err
	}
	lon, err := parseFloat(v, "static_longitude")
	if err != nil {
		return Config{}, err
	}
	timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString("sample_timeout")))
	if err != nil {
		return Config{}, fmt.Errorf("load config: SAMPLE_TIMEOUT: %w", err)
	}

	c := Config{
		DBPath:          strings.TrimSpace(v.GetString("db_path")),
		PrefsPath:       strings.TrimSpace(v.GetString("prefs_path")),
		BindAddr:        strings.TrimSpace(v.GetString("bind_addr")),
		Port:            port,
		LogLevel:        strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:       strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		PositionSource:  strings.ToLower(strings.TrimSpace(v.GetString("position_source"))),
		GpsdAddr:        strings.TrimSpace(v.GetString("gpsd_addr")),
		StaticLatitude:  lat,
		StaticLongitude: lon,
		Permission:      strings.ToLower(strings.TrimSpace(v.GetString("location_permission"))),
		SampleTimeout:   timeout,
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func parseFloat(v *viper.Viper, key string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		return 0, fmt.Errorf("load config: %s: %w", strings.ToUpper(key), err)
	}
	return f, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.PrefsPath == "" {
		errs = append(errs, errors.New("PREFS_PATH is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat))
	}

	switch c.PositionSource {
	case SourceGpsd:
		if _, _, err := net.SplitHostPort(c.GpsdAddr); err != nil {
			errs = append(errs, fmt.Errorf("GPSD_ADDR: %w", err))
		}
	case SourceStatic:
		fix := domain.Coordinates{Lat: c.StaticLatitude, Lon: c.StaticLongitude}
		if err := fix.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("STATIC_LATITUDE/STATIC_LONGITUDE: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("POSITION_SOURCE must be gpsd or static, got %q", c.PositionSource))
	}

	if c.Permission != PermissionPrompt {
		if _, err := domain.ParsePermissionStatus(c.Permission); err != nil {
			errs = append(errs, fmt.Errorf("LOCATION_PERMISSION: %w", err))
		}
	}
	if c.SampleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SAMPLE_TIMEOUT must be positive, got %s", c.SampleTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.BindAddr, strconv.Itoa(c.Port))
}

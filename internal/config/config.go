package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Storage backends
	StorageLocal = "local"
	StorageS3    = "s3"

	// Neighborhood boundary sources
	NeighborhoodsSocrata   = "socrata"
	NeighborhoodsShapefile = "shapefile"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultMaxFileSize   = 100 * 1024 * 1024 // 100MB
	DefaultBatchLimit    = 5
	DefaultRetentionDays = 90

	DefaultGeocoderURL       = "https://nominatim.openstreetmap.org/search"
	DefaultGeocoderUserAgent = "SF-Address-Geocoder/1.0"
	DefaultGeocoderTimeout   = 10 * time.Second
	DefaultGeocodeCacheTTL   = 30 * 24 * time.Hour

	DefaultNeighborhoodsURL   = "https://data.sfgov.org/resource/gfpk-269f.json"
	DefaultNeighborhoodsLimit = 2000

	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultBlobBucket    = "email-attachments"
	DefaultEnvPrefix     = "COPA"
	DefaultAppName       = "copa-listings"
	DefaultDBMaxConns    = 4
	DefaultDBConnTimeout = 10 * time.Second

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the listing pipeline and its surfaces.
type Config struct {
	// MCP server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory string
	MaxFileSize  int64

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string

	Database      DatabaseConfig
	Storage       StorageConfig
	Geocoder      GeocoderConfig
	Neighborhoods NeighborhoodConfig
	AI            AIConfig
	Redis         RedisConfig

	// RulesPath optionally names a JSON file with extra form variant rules.
	RulesPath     string
	BatchLimit    int
	RetentionDays int
	MetricsAddr   string
}

// DatabaseConfig configures the Postgres store.
type DatabaseConfig struct {
	URL         string
	MaxConns    int32
	ConnTimeout time.Duration
}

// StorageConfig configures the attachment blob store.
type StorageConfig struct {
	Type      string
	LocalPath string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// GeocoderConfig configures the Nominatim client.
type GeocoderConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// NeighborhoodConfig selects where boundary polygons come from.
type NeighborhoodConfig struct {
	Source    string
	URL       string
	Limit     int
	Shapefile string
	NameField string
}

// AIConfig configures the fallback parser.
type AIConfig struct {
	APIKey             string
	Model              string
	IncludeAttachments bool
}

// RedisConfig configures the optional geocode cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio,
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		MaxFileSize:  DefaultMaxFileSize,
		Version:      "1.0.0",
		ServerName:   DefaultAppName,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		Database: DatabaseConfig{
			MaxConns:    DefaultDBMaxConns,
			ConnTimeout: DefaultDBConnTimeout,
		},
		Storage: StorageConfig{
			Type:      StorageLocal,
			LocalPath: filepath.Join(currentDir, "attachments"),
			Bucket:    DefaultBlobBucket,
			Region:    "us-west-2",
		},
		Geocoder: GeocoderConfig{
			URL:       DefaultGeocoderURL,
			UserAgent: DefaultGeocoderUserAgent,
			Timeout:   DefaultGeocoderTimeout,
			CacheTTL:  DefaultGeocodeCacheTTL,
		},
		Neighborhoods: NeighborhoodConfig{
			Source:    NeighborhoodsSocrata,
			URL:       DefaultNeighborhoodsURL,
			Limit:     DefaultNeighborhoodsLimit,
			NameField: "name",
		},
		AI: AIConfig{
			Model: DefaultGeminiModel,
		},
		BatchLimit:    DefaultBatchLimit,
		RetentionDays: DefaultRetentionDays,
	}
}

// Load reads configuration from a .env file, COPA_* environment variables and
// the given flag set, in increasing priority. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	v := viper.New()
	setupViperEnvironment(v, cfg)
	if flags != nil {
		bindFlagsToViper(v, flags)
	}
	populateConfigFromViper(v, cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// RegisterFlags defines the command-line flags shared by every binary.
func RegisterFlags(flags *pflag.FlagSet) {
	cfg := DefaultConfig()
	flags.String("mode", cfg.Mode, "MCP server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	flags.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("logformat", cfg.LogFormat, "Log format (json, console)")
	flags.String("rules", "", "JSON file with additional form variant rules")
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.PDFDirectory)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("logformat", cfg.LogFormat)

	v.SetDefault("db.url", "")
	v.SetDefault("db.maxconns", cfg.Database.MaxConns)
	v.SetDefault("db.timeout", cfg.Database.ConnTimeout)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.path", cfg.Storage.LocalPath)
	v.SetDefault("storage.bucket", cfg.Storage.Bucket)
	v.SetDefault("storage.region", cfg.Storage.Region)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")

	v.SetDefault("geocoder.url", cfg.Geocoder.URL)
	v.SetDefault("geocoder.useragent", cfg.Geocoder.UserAgent)
	v.SetDefault("geocoder.timeout", cfg.Geocoder.Timeout)
	v.SetDefault("geocoder.cachettl", cfg.Geocoder.CacheTTL)

	v.SetDefault("neighborhoods.source", cfg.Neighborhoods.Source)
	v.SetDefault("neighborhoods.url", cfg.Neighborhoods.URL)
	v.SetDefault("neighborhoods.limit", cfg.Neighborhoods.Limit)
	v.SetDefault("neighborhoods.shapefile", "")
	v.SetDefault("neighborhoods.namefield", cfg.Neighborhoods.NameField)

	v.SetDefault("ai.apikey", "")
	v.SetDefault("ai.model", cfg.AI.Model)
	v.SetDefault("ai.attachments", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rules", "")
	v.SetDefault("limit", cfg.BatchLimit)
	v.SetDefault("retention", cfg.RetentionDays)
	v.SetDefault("metrics", "")
}

// bindFlagsToViper binds every flag in flags that names a configuration key.
func bindFlagsToViper(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.LogFormat = v.GetString("logformat")

	cfg.Database.URL = firstNonEmpty(v.GetString("db.url"), os.Getenv("DATABASE_URL"))
	cfg.Database.MaxConns = v.GetInt32("db.maxconns")
	cfg.Database.ConnTimeout = v.GetDuration("db.timeout")

	cfg.Storage.Type = v.GetString("storage.type")
	cfg.Storage.LocalPath = v.GetString("storage.path")
	cfg.Storage.Bucket = v.GetString("storage.bucket")
	cfg.Storage.Region = v.GetString("storage.region")
	cfg.Storage.Endpoint = v.GetString("storage.endpoint")
	cfg.Storage.AccessKey = v.GetString("storage.accesskey")
	cfg.Storage.SecretKey = v.GetString("storage.secretkey")

	cfg.Geocoder.URL = v.GetString("geocoder.url")
	cfg.Geocoder.UserAgent = v.GetString("geocoder.useragent")
	cfg.Geocoder.Timeout = v.GetDuration("geocoder.timeout")
	cfg.Geocoder.CacheTTL = v.GetDuration("geocoder.cachettl")

	cfg.Neighborhoods.Source = v.GetString("neighborhoods.source")
	cfg.Neighborhoods.URL = v.GetString("neighborhoods.url")
	cfg.Neighborhoods.Limit = v.GetInt("neighborhoods.limit")
	cfg.Neighborhoods.Shapefile = v.GetString("neighborhoods.shapefile")
	cfg.Neighborhoods.NameField = v.GetString("neighborhoods.namefield")

	cfg.AI.APIKey = firstNonEmpty(v.GetString("ai.apikey"), os.Getenv("GEMINI_API_KEY"))
	cfg.AI.Model = v.GetString("ai.model")
	cfg.AI.IncludeAttachments = v.GetBool("ai.attachments")

	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")

	cfg.RulesPath = v.GetString("rules")
	cfg.BatchLimit = v.GetInt("limit")
	cfg.RetentionDays = v.GetInt("retention")
	cfg.MetricsAddr = v.GetString("metrics")
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.LogFormat)
	}

	switch c.Storage.Type {
	case StorageLocal:
		if c.Storage.LocalPath == "" {
			return errors.New("local storage requires a path")
		}
	case StorageS3:
		if c.Storage.Bucket == "" {
			return errors.New("s3 storage requires a bucket")
		}
	default:
		return fmt.Errorf("unknown storage type: %s (must be local or s3)", c.Storage.Type)
	}

	switch c.Neighborhoods.Source {
	case NeighborhoodsSocrata:
		if c.Neighborhoods.Limit <= 0 {
			return errors.New("neighborhood limit must be positive")
		}
	case NeighborhoodsShapefile:
		if c.Neighborhoods.Shapefile == "" {
			return errors.New("shapefile neighborhood source requires a shapefile path")
		}
	default:
		return fmt.Errorf("unknown neighborhood source: %s (must be socrata or shapefile)", c.Neighborhoods.Source)
	}

	if c.Geocoder.Timeout <= 0 {
		return errors.New("geocoder timeout must be positive")
	}
	if c.BatchLimit <= 0 {
		return errors.New("batch limit must be positive")
	}
	if c.RetentionDays <= 0 {
		return errors.New("retention days must be positive")
	}
	if c.Database.MaxConns <= 0 {
		return errors.New("database max connections must be positive")
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsServerMode returns true if the MCP server listens on a network address
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the MCP server talks over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// HasDatabase reports whether a database URL is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasAI reports whether the fallback parser can be used.
func (c *Config) HasAI() bool {
	return c.AI.APIKey != ""
}

// Retention returns the age after which emails are purged.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// String returns a string representation of the configuration. Secrets are omitted.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, PDFDirectory: %s, LogLevel: %s, Storage: %s, Neighborhoods: %s, AI: %t, Redis: %t}",
		c.Mode, c.PDFDirectory, c.LogLevel, c.Storage.Type, c.Neighborhoods.Source, c.HasAI(), c.Redis.Addr != "")
}

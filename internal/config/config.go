package config

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every environment variable viper looks up.
const EnvPrefix = "UPDATE_SERVICE"

type Config struct {
	APIPort   int    `mapstructure:"apiPort"`
	Host      string `mapstructure:"host"`
	SecretKey string `mapstructure:"secretKey"`
	Storage   struct {
		Root string `mapstructure:"root"`
	} `mapstructure:"storage"`
	Database   Database   `mapstructure:"database"`
	Pagination Pagination `mapstructure:"pagination"`
	Token      struct {
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"token"`
	Log    Log    `mapstructure:"log"`
	Backup Backup `mapstructure:"backup"`
	CORS   struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

type Database struct {
	Type            string        `mapstructure:"type"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	MaxRetries      int           `mapstructure:"maxRetries"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"`
}

type Pagination struct {
	MaxInt      int64 `mapstructure:"maxInt"`
	DefaultSize int64 `mapstructure:"defaultSize"`
}

type Log struct {
	Level  string        `mapstructure:"level"`
	Dev    bool          `mapstructure:"dev"`
	File   string        `mapstructure:"file"`
	MaxAge time.Duration `mapstructure:"maxAge"`
}

type Backup struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Region        string        `mapstructure:"region"`
	Bucket        string        `mapstructure:"bucket"`
	AccessKey     string        `mapstructure:"accessKey"`
	SecretKey     string        `mapstructure:"secretKey"`
	UseSSL        bool          `mapstructure:"useSSL"`
	PresignExpiry time.Duration `mapstructure:"presignExpiry"`
}

// keys lists every setting that may come from the environment alone.
var keys = []string{
	"apiPort", "host", "secretKey",
	"storage.root",
	"database.type", "database.path", "database.dsn", "database.maxOpenConns",
	"database.maxIdleConns", "database.connMaxLifetime", "database.maxRetries", "database.retryDelay",
	"pagination.maxInt", "pagination.defaultSize",
	"token.ttl",
	"log.level", "log.dev", "log.file", "log.maxAge",
	"backup.endpoint", "backup.region", "backup.bucket", "backup.accessKey",
	"backup.secretKey", "backup.useSSL", "backup.presignExpiry",
	"cors.allowedOrigins",
}

// LoadConfig loads the configuration from file and environment variables.
// An empty path skips the file and reads the environment only.
func LoadConfig(path string, lg *zap.SugaredLogger) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg, lg)

	lg.Infow("configuration loaded",
		"port", cfg.APIPort,
		"database", cfg.Database.Type,
		"storage", cfg.Storage.Root,
	)
	return &cfg, nil
}

func applyDefaults(cfg *Config, lg *zap.SugaredLogger) {
	if cfg.APIPort == 0 {
		cfg.APIPort = 8080
		lg.Info("apiPort not specified, using default 8080")
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = "SECRET_KEY"
		lg.Warn("secretKey not specified, using the insecure development key")
	}

	if cfg.Storage.Root == "" {
		cfg.Storage.Root = "Storage"
		lg.Info("storage root not specified, using default Storage")
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/updateservice.db"
		if cfg.Database.Type == "sqlite" {
			lg.Info("database path not specified, using default data/updateservice.db")
		}
	}
	if cfg.Database.MaxRetries == 0 {
		cfg.Database.MaxRetries = 5
	}
	if cfg.Database.RetryDelay == 0 {
		cfg.Database.RetryDelay = 2 * time.Second
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	if cfg.Pagination.MaxInt == 0 {
		cfg.Pagination.MaxInt = math.MaxInt32
	}
	if cfg.Pagination.DefaultSize == 0 {
		cfg.Pagination.DefaultSize = 20
	}

	if cfg.Token.TTL == 0 {
		cfg.Token.TTL = 12 * time.Hour
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxAge == 0 {
		cfg.Log.MaxAge = 7 * 24 * time.Hour
	}

	if cfg.Backup.Region == "" {
		cfg.Backup.Region = "us-east-1"
	}
	if cfg.Backup.PresignExpiry == 0 {
		cfg.Backup.PresignExpiry = 7 * 24 * time.Hour
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
}

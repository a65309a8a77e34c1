package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Enhance  EnhanceConfig  `mapstructure:"enhance"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Search   SearchConfig   `mapstructure:"search"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type UploadConfig struct {
	Dir      string `mapstructure:"dir"`
	TmpDir   string `mapstructure:"tmp_dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

type PipelineConfig struct {
	Workers         int           `mapstructure:"workers"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	ExtractTimeout  time.Duration `mapstructure:"extract_timeout"`
}

type EnhanceConfig struct {
	SkipSpeakers          bool `mapstructure:"skip_speakers"`
	SkipFillers           bool `mapstructure:"skip_fillers"`
	SkipProfanity         bool `mapstructure:"skip_profanity"`
	SkipFormat            bool `mapstructure:"skip_format"`
	SentencesPerParagraph int  `mapstructure:"sentences_per_paragraph"`
}

type SecretsConfig struct {
	MasterKey string `mapstructure:"master_key"`
}

type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type SearchConfig struct {
	Enabled   bool            `mapstructure:"enabled"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
}

type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
}

type EmbeddingConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/transcriptions.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("upload.dir", "./data/uploads")
	v.SetDefault("upload.tmp_dir", "")
	v.SetDefault("upload.max_bytes", 524288000)
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.max_attempts", 3)
	v.SetDefault("pipeline.retry_base_delay", 500*time.Millisecond)
	v.SetDefault("pipeline.provider_timeout", 5*time.Minute)
	v.SetDefault("pipeline.extract_timeout", 10*time.Minute)
	v.SetDefault("enhance.sentences_per_paragraph", 4)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.type", "minio")
	v.SetDefault("archive.endpoint", "localhost:9000")
	v.SetDefault("archive.bucket", "transcripts")
	v.SetDefault("search.enabled", false)
	v.SetDefault("search.qdrant.host", "localhost")
	v.SetDefault("search.qdrant.port", 6334)
	v.SetDefault("search.qdrant.collection", "transcripts")
	v.SetDefault("search.embedding.model", "text-embedding-3-small")
	v.SetDefault("search.embedding.base_url", "https://api.openai.com/v1")
	v.SetDefault("search.embedding.dimensions", 1536)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("secrets.master_key", "SECRETS_MASTER_KEY")
	v.BindEnv("archive.access_key", "ARCHIVE_ACCESS_KEY")
	v.BindEnv("archive.secret_key", "ARCHIVE_SECRET_KEY")
	v.BindEnv("search.qdrant.api_key", "QDRANT_API_KEY")
	v.BindEnv("search.embedding.api_key", "OPENAI_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Secrets.MasterKey == "" {
		return nil, fmt.Errorf("secrets.master_key is required (set SECRETS_MASTER_KEY)")
	}

	return &cfg, nil
}

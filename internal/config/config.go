package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AudioBackendYtDlp   = "ytdlp"
	AudioBackendYouTube = "youtube"

	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	JWT         JWTConfig
	Pipeline    PipelineConfig
	Transcriber TranscriberConfig
	Generator   GeneratorConfig
}

type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ExposeErrorDetails bool
	CookieSecure       bool
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type LoggerConfig struct {
	Env   string
	Level string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// PipelineConfig controls audio acquisition and the overall generation run.
type PipelineConfig struct {
	TempDir            string
	AudioBackend       string
	YtDlpPath          string
	FFmpegPath         string
	AudioCodec         string
	AudioQuality       string
	Timeout            time.Duration
	TranscriptCacheTTL time.Duration
}

type TranscriberConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeneratorConfig struct {
	Provider           string
	APIKey             string
	Model              string
	OllamaServerURL    string
	Language           string
	MaxTranscriptChars int
	RepairAttempts     int
	Temperature        float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.expose_error_details", true)
	v.SetDefault("server.cookie_secure", false)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 1521)
	v.SetDefault("db.name", "FREEPDB1")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")

	v.SetDefault("jwt.access_token_ttl", "15m")
	v.SetDefault("jwt.refresh_token_ttl", "168h")

	v.SetDefault("pipeline.temp_dir", os.TempDir())
	v.SetDefault("pipeline.audio_backend", AudioBackendYtDlp)
	v.SetDefault("pipeline.ytdlp_path", "yt-dlp")
	v.SetDefault("pipeline.ffmpeg_path", "ffmpeg")
	v.SetDefault("pipeline.audio_codec", "mp3")
	v.SetDefault("pipeline.audio_quality", "32K")
	v.SetDefault("pipeline.timeout", "10m")
	v.SetDefault("pipeline.transcript_cache_ttl", "24h")

	v.SetDefault("transcriber.model", "whisper-1")

	v.SetDefault("generator.provider", ProviderGemini)
	v.SetDefault("generator.model", "gemini-2.0-flash")
	v.SetDefault("generator.ollama_server_url", "http://localhost:11434")
	v.SetDefault("generator.language", "German")
	v.SetDefault("generator.max_transcript_chars", 25000)
	v.SetDefault("generator.repair_attempts", 1)
	v.SetDefault("generator.temperature", 0.2)
}

// LoadConfig reads config.yaml and environment overrides. A missing config file is not
// an error; defaults and environment variables are enough to start the server.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Conventional names that do not follow the section_key pattern.
	_ = v.BindEnv("generator.api_key", "GEMINI_API_KEY", "GENERATOR_API_KEY")
	_ = v.BindEnv("transcriber.api_key", "OPENAI_API_KEY", "TRANSCRIBER_API_KEY")
	_ = v.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	_ = v.BindEnv("db.name", "DB_NAME")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               v.GetInt("server.port"),
			ReadTimeout:        v.GetDuration("server.read_timeout"),
			WriteTimeout:       v.GetDuration("server.write_timeout"),
			ExposeErrorDetails: v.GetBool("server.expose_error_details"),
			CookieSecure:       v.GetBool("server.cookie_secure"),
		},
		DB: DBConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		JWT: JWTConfig{
			SecretKey:       v.GetString("jwt.secret_key"),
			AccessTokenTTL:  v.GetDuration("jwt.access_token_ttl"),
			RefreshTokenTTL: v.GetDuration("jwt.refresh_token_ttl"),
		},
		Pipeline: PipelineConfig{
			TempDir:            v.GetString("pipeline.temp_dir"),
			AudioBackend:       strings.ToLower(v.GetString("pipeline.audio_backend")),
			YtDlpPath:          v.GetString("pipeline.ytdlp_path"),
			FFmpegPath:         v.GetString("pipeline.ffmpeg_path"),
			AudioCodec:         v.GetString("pipeline.audio_codec"),
			AudioQuality:       v.GetString("pipeline.audio_quality"),
			Timeout:            v.GetDuration("pipeline.timeout"),
			TranscriptCacheTTL: v.GetDuration("pipeline.transcript_cache_ttl"),
		},
		Transcriber: TranscriberConfig{
			APIKey:  v.GetString("transcriber.api_key"),
			Model:   v.GetString("transcriber.model"),
			BaseURL: v.GetString("transcriber.base_url"),
		},
		Generator: GeneratorConfig{
			Provider:           strings.ToLower(v.GetString("generator.provider")),
			APIKey:             v.GetString("generator.api_key"),
			Model:              v.GetString("generator.model"),
			OllamaServerURL:    v.GetString("generator.ollama_server_url"),
			Language:           v.GetString("generator.language"),
			MaxTranscriptChars: v.GetInt("generator.max_transcript_chars"),
			RepairAttempts:     v.GetInt("generator.repair_attempts"),
			Temperature:        v.GetFloat64("generator.temperature"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with. A missing generator API key
// is deliberately allowed; quiz creation reports it per request instead.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("jwt.secret_key (JWT_SECRET_KEY) is required")
	}
	switch c.Pipeline.AudioBackend {
	case AudioBackendYtDlp, AudioBackendYouTube:
	default:
		return fmt.Errorf("unknown pipeline.audio_backend %q", c.Pipeline.AudioBackend)
	}
	switch c.Generator.Provider {
	case ProviderGemini, ProviderOllama:
	default:
		return fmt.Errorf("unknown generator.provider %q", c.Generator.Provider)
	}
	if c.Generator.MaxTranscriptChars <= 0 {
		return errors.New("generator.max_transcript_chars must be positive")
	}
	if c.Generator.RepairAttempts < 0 {
		return errors.New("generator.repair_attempts must not be negative")
	}
	return nil
}

// GetDSN returns the go-ora connection URL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("oracle://%s@%s:%d/%s",
		url.UserPassword(c.DB.User, c.DB.Password).String(),
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}

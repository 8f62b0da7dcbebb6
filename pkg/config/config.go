package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Pipeline PipelineConfig
	APIKey   string
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PipelineConfig struct {
	// Workers bounds the number of simultaneously executing extractions.
	Workers   int
	QueueSize int
	// ProcessingTimeout caps one whole classification, enforced by the
	// handler around the pipeline call.
	ProcessingTimeout time.Duration
}

func Load() *Config {
	// Optional; real environments set the variables directly.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Address:      getString("SERVER_ADDRESS", ":8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			Workers:           getInt("PIPELINE_WORKERS", 4),
			QueueSize:         getInt("PIPELINE_QUEUE_SIZE", 64),
			ProcessingTimeout: getDuration("PROCESSING_TIMEOUT", 15*time.Second),
		},
		APIKey: os.Getenv("API_KEY"),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

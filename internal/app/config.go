package app

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	MoviesDir          string
	ShowsDir           string
	MongoURI           string
	MongoDatabase      string
	MongoCollection    string
	TorrentListenPort  int
	DisableSeeding     bool
	MonitorTickMS      int64
	MovieBufferPct     float64
	ShowBufferPct      float64
	DefaultBufferPct   float64
	OTELEndpoint       string
	OTELSampleRate     float64
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	HistoryLimit       int
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		MoviesDir:          getEnv("MOVIES_DIR", "media/movies"),
		ShowsDir:           getEnv("SHOWS_DIR", "media/shows"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGO_DB", "playstream"),
		MongoCollection:    getEnv("MONGO_COLLECTION", "download_history"),
		TorrentListenPort:  int(getEnvInt64("TORRENT_LISTEN_PORT", 0)),
		DisableSeeding:     getEnvBool("TORRENT_DISABLE_SEEDING", false),
		MonitorTickMS:      getEnvInt64("MONITOR_TICK_MS", 1000),
		MovieBufferPct:     getEnvFloat("BUFFER_PERCENT_MOVIE", 10),
		ShowBufferPct:      getEnvFloat("BUFFER_PERCENT_SHOW", 3),
		DefaultBufferPct:   getEnvFloat("BUFFER_PERCENT_DEFAULT", 5),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELSampleRate:     getEnvFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
		CORSAllowedOrigins: parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RateLimitRPS:       getEnvFloat("HTTP_RATE_LIMIT_RPS", 20),
		RateLimitBurst:     int(getEnvInt64("HTTP_RATE_LIMIT_BURST", 40)),
		HistoryLimit:       int(getEnvInt64("HISTORY_LIMIT", 50)),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	if parsed < 0 {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	if parsed < 0 {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

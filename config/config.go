package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (optionally seeded from a .env file) with sensible defaults.
type Config struct {
	ListenAddr string

	// External tools used by the acquisition pipeline.
	FFmpegPath         string // ffprobe is derived from this path
	YtdlpPath          string
	SpotdlPath         string
	PythonPath         string
	PyDownloaderScript string // fallback extractor script

	UploadDir      string // Base directory for all uploads
	AudioUploadDir string // Subdirectory for audio files: UploadDir/audio
	CoverUploadDir string // Subdirectory for cover art: UploadDir/covers

	// Per-attempt timeouts. A timeout only fails the attempt, never the pipeline.
	DirectTimeout    time.Duration
	StrategyTimeout  time.Duration
	FallbackTimeout  time.Duration
	ThumbnailTimeout time.Duration

	// How long a progress subscriber stays registered after a terminal event.
	EventGracePeriod time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	LogPath  string
	LogLevel string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvSeconds reads an integer number of seconds from the environment.
func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	uploadBase := getEnv("UPLOAD_DIR", "uploads")

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		YtdlpPath:          getEnv("YTDLP_PATH", "yt-dlp"),
		SpotdlPath:         getEnv("SPOTDL_PATH", "spotdl"),
		PythonPath:         getEnv("PYTHON_PATH", "python3"),
		PyDownloaderScript: getEnv("PY_DOWNLOADER_SCRIPT", filepath.Join("scripts", "python_downloader.py")),

		UploadDir:      uploadBase,
		AudioUploadDir: filepath.Join(uploadBase, "audio"),
		CoverUploadDir: filepath.Join(uploadBase, "covers"),

		DirectTimeout:    getEnvSeconds("DIRECT_TIMEOUT_SECONDS", 60),
		StrategyTimeout:  getEnvSeconds("STRATEGY_TIMEOUT_SECONDS", 120),
		FallbackTimeout:  getEnvSeconds("FALLBACK_TIMEOUT_SECONDS", 180),
		ThumbnailTimeout: getEnvSeconds("THUMBNAIL_TIMEOUT_SECONDS", 30),

		EventGracePeriod: getEnvSeconds("EVENT_GRACE_SECONDS", 5),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for passwords
		DBName:     getEnv("DB_NAME", "dl"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "bt1qdl"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		LogPath:  getEnv("LOG_PATH", filepath.Join("logs", "bt1qdl.log")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

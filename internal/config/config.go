package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string
	DBPath     string

	PhotoPath           string
	PhotoLibraryPath    string
	MapPhotoLimit       int
	SidecarFormat       string
	RequireMediaLibrary bool

	ReportPath        string
	ReportFormat      string
	ReportIncludeRoom bool

	ShareBackend     string
	ShareLocalPath   string
	ShareS3Bucket    string
	ShareS3Region    string
	ShareS3Endpoint  string
	ShareS3Prefix    string
	ShareS3PathStyle bool
	ShareLinkTTL     time.Duration

	LogLevel  string
	LogFile   string
	LogFormat string
}

func Load() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("DB_PATH", "/data/inspectors.db"),

		PhotoPath:           getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		PhotoLibraryPath:    getEnv("PHOTO_LIBRARY_PATH", "/data/library"),
		MapPhotoLimit:       getEnvInt("MAP_PHOTO_LIMIT", 100),
		SidecarFormat:       getEnv("SIDECAR_FORMAT", "detailed"),
		RequireMediaLibrary: getEnvBool("REQUIRE_MEDIA_LIBRARY", false),

		ReportPath:        getEnv("REPORT_PATH", "/data/reports"),
		ReportFormat:      getEnv("REPORT_FORMAT", "xlsx"),
		ReportIncludeRoom: getEnvBool("REPORT_INCLUDE_ROOM", true),

		ShareBackend:     getEnv("SHARE_BACKEND", "local"),
		ShareLocalPath:   getEnv("SHARE_LOCAL_PATH", "/data/outbox"),
		ShareS3Bucket:    getEnv("SHARE_S3_BUCKET", ""),
		ShareS3Region:    getEnv("SHARE_S3_REGION", "us-east-1"),
		ShareS3Endpoint:  getEnv("SHARE_S3_ENDPOINT", ""),
		ShareS3Prefix:    getEnv("SHARE_S3_PREFIX", "reports/"),
		ShareS3PathStyle: getEnvBool("SHARE_S3_PATH_STYLE", false),
		ShareLinkTTL:     getEnvDuration("SHARE_LINK_TTL", 15*time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", ""),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

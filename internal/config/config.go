package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabaseURL        string
	SecretKey          string
	Debug              bool
	GinMode            string
	AdminUsername      string
	AdminPassword      string
	CORSAllowedOrigins []string
	TrustedProxies     []string
	MediaRoot          string
	MediaURL           string
	SiteBaseURL        string
	LogLevel           string
	LogFormat          string
	MaxUploadBytes     int64
}

// ErrSecretKeyMissing 表示未配置令牌签名密钥。
var ErrSecretKeyMissing = errors.New("SECRET_KEY is required")

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := env("PORT", "8000")

	listenAddr := env("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	debug := parseBool(os.Getenv("DEBUG"))

	ginMode := env("GIN_MODE", "")
	if ginMode == "" {
		ginMode = "release"
		if debug {
			ginMode = "debug"
		}
	}

	logLevel := env("LOG_LEVEL", "")
	if logLevel == "" {
		logLevel = "info"
		if debug {
			logLevel = "debug"
		}
	}

	logFormat := env("LOG_FORMAT", "")
	if logFormat == "" {
		logFormat = "json"
		if debug {
			logFormat = "text"
		}
	}

	maxUploadMB, err := strconv.Atoi(env("MAX_UPLOAD_MB", "10"))
	if err != nil || maxUploadMB <= 0 {
		maxUploadMB = 10
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabaseURL:        env("DATABASE_URL", "sqlite:///db.sqlite3"),
		SecretKey:          env("SECRET_KEY", ""),
		Debug:              debug,
		GinMode:            ginMode,
		AdminUsername:      env("ADMIN_USERNAME", ""),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		TrustedProxies:     splitList(os.Getenv("TRUSTED_PROXIES")),
		MediaRoot:          env("MEDIA_ROOT", "media"),
		MediaURL:           normalizeURLPath(env("MEDIA_URL", "/media/")),
		SiteBaseURL:        strings.TrimRight(env("SITE_BASE_URL", ""), "/"),
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		MaxUploadBytes:     int64(maxUploadMB) << 20,
	}
}

// Validate 检查启动前必须具备的配置项。
func (c AppConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrSecretKeyMissing
	}
	return nil
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, trimmed)
	}
	return values
}

// normalizeURLPath 保证路径以 / 开头并以 / 结尾。
func normalizeURLPath(path string) string {
	path = "/" + strings.Trim(path, "/")
	if path == "/" {
		return path
	}
	return path + "/"
}

package devserver

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config 开发后端配置
type Config struct {
	// Addr 监听地址
	Addr string
	// Env 运行环境 (dev, prod)
	Env string
	// LogLevel 日志级别
	LogLevel string
	// JWTSecret 令牌签名密钥
	JWTSecret string
	// RequireAuth 为 true 时所有 /recipes 请求必须带 Bearer 令牌
	RequireAuth bool
	// Seed 是否预置示例用户与食谱
	Seed bool
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Addr:        getEnv("DEVSERVER_ADDR", ":3000"),
		Env:         getEnv("ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		JWTSecret:   getEnv("DEVSERVER_JWT_SECRET", ""),
		RequireAuth: getEnvAsBool("DEVSERVER_REQUIRE_AUTH", false),
		Seed:        getEnvAsBool("DEVSERVER_SEED", true),
	}
	return cfg, nil
}

// ValidateConfig 验证配置
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.Addr == "" {
		errors = append(errors, "DEVSERVER_ADDR is required")
	}

	if cfg.Env == "prod" && len(cfg.JWTSecret) < 32 {
		errors = append(errors, "DEVSERVER_JWT_SECRET must be at least 32 characters long in prod")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.LogLevel] {
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL: %s (must be: debug, info, warn, error)", cfg.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool 获取布尔类型的环境变量，解析失败返回默认值
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

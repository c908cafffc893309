// Package config 命令行全局配置
//
// 优先级（从低到高）：配置文件 ~/.recetas/config.yaml < .env < 环境变量 < 命令行标志
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/houzhh15/recetas/internal/serverconfig"
)

// 环境变量名
const (
	EnvConfigFile  = "RECETAS_CONFIG"
	EnvStateDir    = "RECETAS_STATE_DIR"
	EnvServerURL   = "RECETAS_SERVER_URL"
	EnvOutput      = "RECETAS_OUTPUT"
	EnvLogLevel    = "RECETAS_LOG_LEVEL"
	EnvLogFile     = "RECETAS_LOG_FILE"
	EnvLang        = "RECETAS_LANG"
	EnvAttachToken = "RECETAS_ATTACH_TOKEN"
)

// Config CLI 全局配置
type Config struct {
	StateDir string `yaml:"state_dir"`
	// ServerURL 非空时覆盖已保存的 serverUrl，不会写入状态文件
	ServerURL string `yaml:"server_url"`
	Output    string `yaml:"output"`
	LogLevel  string `yaml:"log_level"`
	LogFile   string `yaml:"log_file"`
	Lang      string `yaml:"lang"`
	// AttachToken 是否在请求中附带登录令牌
	AttachToken bool `yaml:"attach_token"`
}

// StatePath 状态文件路径（serverUrl、userToken）
func (c *Config) StatePath() string {
	return filepath.Join(c.StateDir, "state.yaml")
}

// AddGlobalFlags 为 root 命令添加全局标志
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "配置文件路径 (env: "+EnvConfigFile+", 默认: ~/.recetas/config.yaml)")
	cmd.PersistentFlags().String("env-file", ".env", "dotenv 文件路径")
	cmd.PersistentFlags().String("state-dir", "", "状态目录 (env: "+EnvStateDir+", 默认: ~/.recetas)")
	cmd.PersistentFlags().String("server-url", "", "临时指定服务器地址 (env: "+EnvServerURL+")")
	cmd.PersistentFlags().StringP("output", "o", "", "输出格式: json / text (默认: text)")
	cmd.PersistentFlags().String("log-level", "", "日志级别: debug / info / warn / error (默认: warn)")
	cmd.PersistentFlags().String("log-file", "", "日志文件，按大小滚动 (env: "+EnvLogFile+")")
	cmd.PersistentFlags().String("lang", "", "提示语言: es / en (env: "+EnvLang+")")
	cmd.PersistentFlags().Bool("attach-token", false, "请求附带 Authorization: Bearer <userToken> (env: "+EnvAttachToken+")")
}

// Load 按优先级合并配置并校验
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{}

	home, _ := os.UserHomeDir()
	defaultDir := filepath.Join(home, ".recetas")

	// 1. 配置文件
	path := flagString(cmd, "config")
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	explicit := path != ""
	if path == "" {
		path = filepath.Join(defaultDir, "config.yaml")
	}
	if err := loadFile(path, cfg, explicit); err != nil {
		return nil, err
	}

	// 2. .env 只补充进程环境中没有的变量
	dotenv := map[string]string{}
	if envFile := flagString(cmd, "env-file"); envFile != "" {
		if values, err := godotenv.Read(envFile); err == nil {
			dotenv = values
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	// 3. 环境变量
	overrideString(&cfg.StateDir, lookup(EnvStateDir))
	overrideString(&cfg.ServerURL, lookup(EnvServerURL))
	overrideString(&cfg.Output, lookup(EnvOutput))
	overrideString(&cfg.LogLevel, lookup(EnvLogLevel))
	overrideString(&cfg.LogFile, lookup(EnvLogFile))
	overrideString(&cfg.Lang, lookup(EnvLang))
	if v := lookup(EnvAttachToken); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", EnvAttachToken, v)
		}
		cfg.AttachToken = b
	}

	// 4. 命令行标志
	overrideString(&cfg.StateDir, flagString(cmd, "state-dir"))
	overrideString(&cfg.ServerURL, flagString(cmd, "server-url"))
	overrideString(&cfg.Output, flagString(cmd, "output"))
	overrideString(&cfg.LogLevel, flagString(cmd, "log-level"))
	overrideString(&cfg.LogFile, flagString(cmd, "log-file"))
	overrideString(&cfg.Lang, flagString(cmd, "lang"))
	if cmd != nil && cmd.Flags().Changed("attach-token") {
		cfg.AttachToken, _ = cmd.Flags().GetBool("attach-token")
	}

	// 默认值
	if cfg.StateDir == "" {
		cfg.StateDir = defaultDir
	}
	if cfg.Output == "" {
		cfg.Output = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func Validate(cfg *Config) error {
	var problems []string

	switch cfg.Output {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("invalid output: %s (must be: json, text)", cfg.Output))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		problems = append(problems, fmt.Sprintf("invalid log level: %s (must be: debug, info, warn, error)", cfg.LogLevel))
	}

	if cfg.ServerURL != "" {
		if err := serverconfig.Validate(cfg.ServerURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid server url %q: %v", cfg.ServerURL, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// loadFile 读取 YAML 配置；默认路径不存在时忽略
func loadFile(path string, cfg *Config, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return ""
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

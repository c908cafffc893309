package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCmd 创建带全局标志的命令并解析参数
func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "recetas"}
	AddGlobalFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

// isolate 隔离 HOME 与相关环境变量
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{EnvConfigFile, EnvStateDir, EnvServerURL, EnvOutput, EnvLogLevel, EnvLogFile, EnvLang, EnvAttachToken} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(newCmd(t, "--env-file", filepath.Join(home, "missing.env")))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".recetas"), cfg.StateDir)
	assert.Equal(t, filepath.Join(home, ".recetas", "state.yaml"), cfg.StatePath())
	assert.Equal(t, "text", cfg.Output)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.ServerURL)
	assert.False(t, cfg.AttachToken)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".recetas")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"output: json\nlang: en\nlog_level: info\nstate_dir: /from/file\n"), 0o600))

	envFile := filepath.Join(home, "dev.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"RECETAS_LANG=es\nRECETAS_LOG_LEVEL=error\nRECETAS_ATTACH_TOKEN=true\n"), 0o600))

	// 环境变量覆盖 .env
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(newCmd(t, "--env-file", envFile, "--state-dir", "/from/flag"))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output, "file value kept when nothing overrides it")
	assert.Equal(t, "es", cfg.Lang, ".env overrides file")
	assert.Equal(t, "debug", cfg.LogLevel, "environment overrides .env")
	assert.Equal(t, "/from/flag", cfg.StateDir, "flag overrides file")
	assert.True(t, cfg.AttachToken)
}

func TestLoad_FlagDisablesAttachToken(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAttachToken, "true")

	cfg, err := Load(newCmd(t, "--attach-token=false"))
	require.NoError(t, err)
	assert.False(t, cfg.AttachToken)
}

func TestLoad_ExplicitConfigMustExist(t *testing.T) {
	home := isolate(t)

	_, err := Load(newCmd(t, "--config", filepath.Join(home, "nope.yaml")))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)

	_, err := Load(newCmd(t, "--output", "xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output")

	_, err = Load(newCmd(t, "--server-url", "localhost:3000"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server url")

	t.Setenv(EnvAttachToken, "maybe")
	_, err = Load(newCmd(t))
	assert.Error(t, err)
}

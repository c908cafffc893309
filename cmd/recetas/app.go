package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/houzhh15/recetas/internal/apiclient"
	"github.com/houzhh15/recetas/internal/config"
	"github.com/houzhh15/recetas/internal/kvstore"
	"github.com/houzhh15/recetas/internal/messages"
	"github.com/houzhh15/recetas/internal/serverconfig"
	"github.com/houzhh15/recetas/internal/session"
	"github.com/houzhh15/recetas/pkg/logger"
)

// app 单次命令执行所需的依赖
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	state   *kvstore.FileStore
	servers *serverconfig.Store
	client  *apiclient.Client
	session *session.Manager
	msg     *messages.Localizer
}

// loadApp 加载配置并组装客户端与会话
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Output: logOutput(cmd, cfg),
	})
	if err != nil {
		return nil, err
	}
	log = log.With("component", "recetas-cli")

	state := kvstore.NewFileStore(cfg.StatePath())
	servers := serverconfig.New(state)

	// --server-url 只对本次调用生效
	var source apiclient.URLSource = servers
	if cfg.ServerURL != "" {
		source = serverconfig.Static(cfg.ServerURL)
	}

	opts := []apiclient.Option{apiclient.WithLogger(log)}
	if cfg.AttachToken {
		opts = append(opts, apiclient.WithTokenSource(session.NewManager(state, nil, log)))
	}
	client := apiclient.New(source, opts...)

	return &app{
		cfg:     cfg,
		logger:  log,
		state:   state,
		servers: servers,
		client:  client,
		session: session.NewManager(state, client, log),
		msg:     messages.New(cfg.Lang),
	}, nil
}

// logOutput 未指定日志文件时写入命令的 stderr
func logOutput(cmd *cobra.Command, cfg *config.Config) io.Writer {
	if cfg.LogFile != "" {
		return nil
	}
	return cmd.ErrOrStderr()
}

// fail 将错误转换为面向用户的提示
func (a *app) fail(op messages.Operation, err error) error {
	a.logger.Debug("operation_failed", "op", string(op), "error", err)
	return &userError{msg: a.msg.Describe(op, err), err: err}
}

// userError 已本地化的错误，main 直接输出 msg
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// exitMessage 返回应输出到 stderr 的错误文本
func exitMessage(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg
	}
	return err.Error()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

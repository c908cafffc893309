// Package session 登录/登出流程以及令牌持久化
//
// API 客户端本身不读写 userToken，由本包在登录成功后保存、登出时删除。
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/houzhh15/recetas/internal/kvstore"
	"github.com/houzhh15/recetas/internal/models"
	"github.com/houzhh15/recetas/internal/serverconfig"
	"github.com/houzhh15/recetas/pkg/logger"
)

var (
	// ErrMissingCredentials 邮箱或密码为空，未发请求
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrInvalidCredentials 服务器响应中没有 token
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Route 启动时应进入的界面
type Route string

const (
	RouteServerSelection Route = "server-selection"
	RouteLogin           Route = "login"
	RouteHome            Route = "home"
)

// Authenticator 登录所需的客户端能力
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
}

// Manager 管理 userToken
type Manager struct {
	kv     kvstore.Store
	auth   Authenticator
	logger *slog.Logger
}

// NewManager 创建会话管理器；auth 可为 nil（只读取/清除令牌时）
func NewManager(kv kvstore.Store, auth Authenticator, l *slog.Logger) *Manager {
	if l == nil {
		l = logger.Nop()
	}
	return &Manager{kv: kv, auth: auth, logger: l}
}

// Login 校验输入后登录，成功时保存令牌
func (m *Manager) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if m.auth == nil {
		return nil, errors.New("session: no authenticator configured")
	}
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !res.HasToken() {
		m.logger.Info("login_rejected", "email", email, "reason", "no token in response")
		return nil, ErrInvalidCredentials
	}
	if err := m.kv.Set(serverconfig.KeyUserToken, res.Token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	m.logger.Info("login_succeeded", "email", email)
	return res, nil
}

// Logout 删除令牌
func (m *Manager) Logout() error {
	if err := m.kv.Remove(serverconfig.KeyUserToken); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	m.logger.Info("logged_out")
	return nil
}

// Token 读取令牌，实现 apiclient.TokenSource
func (m *Manager) Token() (string, bool, error) {
	tok, ok, err := m.kv.Get(serverconfig.KeyUserToken)
	if err != nil {
		return "", false, fmt.Errorf("read token: %w", err)
	}
	return tok, ok && tok != "", nil
}

// Route 根据已保存的状态决定起始界面
func (m *Manager) Route() (Route, error) {
	configured, err := serverconfig.New(m.kv).IsConfigured()
	if err != nil {
		return "", err
	}
	if !configured {
		return RouteServerSelection, nil
	}
	_, loggedIn, err := m.Token()
	if err != nil {
		return "", err
	}
	if !loggedIn {
		return RouteLogin, nil
	}
	return RouteHome, nil
}

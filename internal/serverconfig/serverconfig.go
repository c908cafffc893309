// Package serverconfig 持久化后端服务器基础地址（serverUrl）
package serverconfig

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/houzhh15/recetas/internal/kvstore"
)

// 存储键名
const (
	KeyServerURL = "serverUrl"
	KeyUserToken = "userToken"
)

var urlPattern = regexp.MustCompile(`^https?://.+`)

var (
	// ErrEmptyURL 未输入地址
	ErrEmptyURL = errors.New("server URL is empty")
	// ErrInvalidURL 地址不以 http:// 或 https:// 开头
	ErrInvalidURL = errors.New("server URL must start with http:// or https://")
)

// Store 读写 serverUrl；本层不做格式校验
type Store struct {
	kv kvstore.Store
}

// New 基于键值存储创建配置存储
func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// GetServerURL 读取已保存的地址；从未保存时 ok 为 false
func (s *Store) GetServerURL() (string, bool, error) {
	v, ok, err := s.kv.Get(KeyServerURL)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", KeyServerURL, err)
	}
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// SetServerURL 保存地址，覆盖旧值
func (s *Store) SetServerURL(url string) error {
	if err := s.kv.Set(KeyServerURL, url); err != nil {
		return fmt.Errorf("write %s: %w", KeyServerURL, err)
	}
	return nil
}

// Save 校验后保存，对应服务器选择流程
func (s *Store) Save(url string) error {
	if err := Validate(url); err != nil {
		return err
	}
	return s.SetServerURL(url)
}

// IsConfigured 是否已保存地址
func (s *Store) IsConfigured() (bool, error) {
	_, ok, err := s.GetServerURL()
	return ok, err
}

// Validate 校验地址格式 ^https?://.+
func Validate(url string) error {
	if url == "" {
		return ErrEmptyURL
	}
	if !urlPattern.MatchString(url) {
		return ErrInvalidURL
	}
	return nil
}

// Static 固定地址来源，用于命令行或环境变量强制指定服务器
type Static string

// GetServerURL 返回固定地址；空字符串视为未配置
func (s Static) GetServerURL() (string, bool, error) {
	return string(s), s != "", nil
}

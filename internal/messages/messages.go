// Package messages 将客户端错误映射为面向用户的提示
//
// 状态码到提示语的映射属于展示层，API 客户端只负责返回 HTTPError。
// 服务器在响应体中给出 error 字段时优先使用该字段。
package messages

import (
	"errors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/houzhh15/recetas/internal/apiclient"
	"github.com/houzhh15/recetas/internal/models"
	"github.com/houzhh15/recetas/internal/serverconfig"
	"github.com/houzhh15/recetas/internal/session"
)

// Operation 用户发起的操作
type Operation string

const (
	OpServer Operation = "server"
	OpLogin  Operation = "login"
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

var (
	supported = []language.Tag{language.Spanish, language.English}
	matcher   = language.NewMatcher(supported)
	cat       = buildCatalog()
)

// Localizer 按语言输出提示
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New 根据语言偏好（如 "es", "en-US"）创建；无法识别时使用西班牙语
func New(lang string) *Localizer {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	tag = language.Make(base.String())
	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// Language 实际使用的语言
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// Text 按键取提示
func (l *Localizer) Text(key string) string {
	return l.printer.Sprintf(key)
}

// Success 成功提示；服务器返回 mensaje 时优先使用
func (l *Localizer) Success(op Operation, serverMessage string) string {
	if serverMessage != "" {
		return serverMessage
	}
	switch op {
	case OpCreate:
		return l.Text(KeyCreateSucceeded)
	case OpUpdate:
		return l.Text(KeyUpdateSucceeded)
	case OpDelete:
		return l.Text(KeyDeleteSucceeded)
	case OpLogin:
		return l.Text(KeyLoginSucceeded)
	case OpServer:
		return l.Text(KeyServerSaved)
	}
	return ""
}

// Describe 将错误转换为提示
func (l *Localizer) Describe(op Operation, err error) string {
	if err == nil {
		return ""
	}
	if key, ok := localKey(err); ok {
		return l.Text(key)
	}

	var he *apiclient.HTTPError
	if errors.As(err, &he) {
		return l.describeStatus(op, he)
	}

	var ne *apiclient.NetworkError
	if errors.As(err, &ne) {
		switch op {
		case OpCreate, OpUpdate:
			return l.Text(KeyNetworkFailed)
		}
	}
	return l.Text(fallbackKey(op))
}

// localKey 请求发出前就失败的错误
func localKey(err error) (string, bool) {
	switch {
	case errors.Is(err, apiclient.ErrUnconfigured):
		return KeyUnconfigured, true
	case errors.Is(err, serverconfig.ErrEmptyURL):
		return KeyServerURLRequired, true
	case errors.Is(err, serverconfig.ErrInvalidURL):
		return KeyServerURLInvalid, true
	case errors.Is(err, session.ErrMissingCredentials):
		return KeyLoginMissing, true
	case errors.Is(err, session.ErrInvalidCredentials):
		return KeyLoginInvalid, true
	case errors.Is(err, models.ErrMissingFields):
		return KeyMissingFields, true
	case errors.Is(err, models.ErrNoIngredients):
		return KeyNoIngredients, true
	case errors.Is(err, models.ErrNoSteps):
		return KeyNoSteps, true
	}
	return "", false
}

func (l *Localizer) describeStatus(op Operation, he *apiclient.HTTPError) string {
	switch op {
	case OpList, OpDelete:
		// 列表与删除只给固定提示
		return l.Text(fallbackKey(op))
	case OpLogin:
		if he.Message != "" {
			return he.Message
		}
		return l.Text(KeyLoginFailed)
	}

	if he.Message != "" {
		return he.Message
	}

	switch op {
	case OpCreate:
		switch he.Status {
		case 400:
			return l.Text(KeyCreateBadRequest)
		case 403:
			return l.Text(KeyCreateForbidden)
		case 409:
			return l.Text(KeyCreateConflict)
		case 422:
			return l.Text(KeyCreateUnprocessable)
		}
	case OpUpdate:
		switch he.Status {
		case 400:
			return l.Text(KeyUpdateBadRequest)
		case 403:
			return l.Text(KeyUpdateForbidden)
		case 404:
			return l.Text(KeyNotFound)
		}
	}
	return l.Text(fallbackKey(op))
}

func fallbackKey(op Operation) string {
	switch op {
	case OpLogin:
		return KeyLoginFailed
	case OpList:
		return KeyListFailed
	case OpCreate:
		return KeyCreateFailed
	case OpUpdate:
		return KeyUpdateFailed
	case OpDelete:
		return KeyDeleteFailed
	}
	return KeyNetworkFailed
}

package models

import "encoding/json"

// Credentials 登录凭据，仅在请求期间存在，不落盘
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult 登录响应；除 token 外的字段原样保留在 Raw 中
type AuthResult struct {
	Token string          `json:"token"`
	Raw   json.RawMessage `json:"-"`
}

// UnmarshalJSON 提取 token（字符串类型才认），并保留原始响应
func (a *AuthResult) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if raw, ok := probe["token"]; ok {
		var tok string
		if json.Unmarshal(raw, &tok) == nil {
			a.Token = tok
		}
	}
	a.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON 输出原始响应
func (a AuthResult) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	return json.Marshal(map[string]string{"token": a.Token})
}

// HasToken 响应中是否带有 token；调用方据此判断登录是否成功
func (a *AuthResult) HasToken() bool {
	return a != nil && a.Token != ""
}

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Ingredient 配料，按录入顺序保存
type Ingredient struct {
	Nombre   string `json:"nombre" yaml:"nombre"`
	Cantidad string `json:"cantidad" yaml:"cantidad"`
}

// Step 制作步骤，Orden 为从 1 开始的序号
type Step struct {
	Orden       int    `json:"orden" yaml:"orden"`
	Descripcion string `json:"descripcion" yaml:"descripcion"`
}

// Recipe 食谱记录；ID 由后端分配
type Recipe struct {
	ID            int64        `json:"id,omitempty" yaml:"id,omitempty"`
	Nombre        string       `json:"nombre" yaml:"nombre"`
	Descripcion   string       `json:"descripcion" yaml:"descripcion"`
	Imagen        string       `json:"imagen,omitempty" yaml:"imagen,omitempty"`
	FechaCreacion string       `json:"fechaCreacion" yaml:"fechaCreacion"`
	TipoID        int64        `json:"tipoId" yaml:"tipoId"`
	Porciones     int          `json:"porciones" yaml:"porciones"`
	Ingredientes  []Ingredient `json:"ingredientes" yaml:"ingredientes"`
	Pasos         []Step       `json:"pasos" yaml:"pasos"`
}

// UnmarshalJSON 与默认解码相同，但 id、tipoId 也接受数字字符串（如 "3"）
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	aux := struct {
		*plain
		ID     flexInt `json:"id"`
		TipoID flexInt `json:"tipoId"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ID = int64(aux.ID)
	r.TipoID = int64(aux.TipoID)
	return nil
}

// flexInt 接受 JSON 数字、数字字符串、空字符串与 null
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", data)
	}
	*f = flexInt(n)
	return nil
}

// 提交前校验失败的原因
var (
	ErrMissingFields = errors.New("required recipe fields are missing")
	ErrNoIngredients = errors.New("at least one ingredient with name and quantity is required")
	ErrNoSteps       = errors.New("at least one preparation step is required")
)

// Validate 调用方在提交前执行的检查，API 客户端本身不校验
func (r *Recipe) Validate() error {
	if blank(r.Nombre) || blank(r.Descripcion) || blank(r.FechaCreacion) || r.TipoID == 0 || r.Porciones <= 0 {
		return ErrMissingFields
	}
	if len(r.Ingredientes) == 0 {
		return ErrNoIngredients
	}
	for _, ing := range r.Ingredientes {
		if blank(ing.Nombre) || blank(ing.Cantidad) {
			return ErrNoIngredients
		}
	}
	if len(r.Pasos) == 0 {
		return ErrNoSteps
	}
	for _, p := range r.Pasos {
		if blank(p.Descripcion) {
			return ErrNoSteps
		}
	}
	return nil
}

// NumberSteps 按当前顺序重新编号步骤
func (r *Recipe) NumberSteps() {
	for i := range r.Pasos {
		r.Pasos[i].Orden = i + 1
	}
}

// Payload 返回去掉 ID 的副本，用于请求体
func (r Recipe) Payload() Recipe {
	r.ID = 0
	return r
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RecipeFilter 列表查询参数；零值字段不发送
type RecipeFilter struct {
	MyRecipes bool
	ID        int64
	// Extra 原样透传的其他查询参数
	Extra url.Values
}

// Query 编码为 URL 查询参数
func (f RecipeFilter) Query() url.Values {
	q := url.Values{}
	for k, vs := range f.Extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if f.MyRecipes {
		q.Set("myRecipes", "true")
	}
	if f.ID != 0 {
		q.Set("id", strconv.FormatInt(f.ID, 10))
	}
	return q
}

// RecipeList 列表响应：Items 为解码后的食谱，Raw 保留服务器返回的原始内容
type RecipeList struct {
	Items []Recipe
	Raw   json.RawMessage
}

// UnmarshalJSON 解码数组并保留原始响应
func (l *RecipeList) UnmarshalJSON(data []byte) error {
	items := []Recipe{}
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	l.Items = items
	l.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON 输出原始响应，未知字段不丢失
func (l RecipeList) MarshalJSON() ([]byte, error) {
	if len(l.Raw) > 0 {
		return l.Raw, nil
	}
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

// RawItems 按元素拆分原始响应，与 Items 一一对应
func (l *RecipeList) RawItems() ([]json.RawMessage, error) {
	if len(l.Raw) == 0 {
		out := make([]json.RawMessage, 0, len(l.Items))
		for _, r := range l.Items {
			b, err := json.Marshal(r)
			if err != nil {
				return nil, err
			}
			out = append(out, b)
		}
		return out, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(l.Raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MutationResult 创建/更新/删除的响应体
// 后端可能返回 {mensaje, ...} 或直接返回食谱，Raw 保留原始内容
type MutationResult struct {
	Mensaje string          `json:"mensaje,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// UnmarshalJSON 解析 mensaje 并保留原始响应
func (m *MutationResult) UnmarshalJSON(data []byte) error {
	var probe struct {
		Mensaje json.RawMessage `json:"mensaje"`
	}
	// 非对象响应（如数组或字符串）只保留原文
	if err := json.Unmarshal(data, &probe); err == nil && len(probe.Mensaje) > 0 {
		var msg string
		if json.Unmarshal(probe.Mensaje, &msg) == nil {
			m.Mensaje = msg
		}
	}
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON 输出原始响应
func (m MutationResult) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	type plain MutationResult
	return json.Marshal(plain(m))
}

// Recipe 从响应中取出食谱：优先 receta 字段，其次整个响应体带 id 时视为食谱
func (m *MutationResult) Recipe() (*Recipe, bool) {
	if len(m.Raw) == 0 {
		return nil, false
	}
	var wrapped struct {
		Receta *Recipe `json:"receta"`
	}
	if err := json.Unmarshal(m.Raw, &wrapped); err == nil && wrapped.Receta != nil {
		return wrapped.Receta, true
	}
	var r Recipe
	if err := json.Unmarshal(m.Raw, &r); err == nil && r.ID != 0 {
		return &r, true
	}
	return nil, false
}

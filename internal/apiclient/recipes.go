package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/houzhh15/recetas/internal/models"
)

// 操作名，用于错误信息、日志与指标
const (
	OpLogin        = "login"
	OpFetchRecipes = "fetch_recipes"
	OpCreateRecipe = "create_recipe"
	OpUpdateRecipe = "update_recipe"
	OpDeleteRecipe = "delete_recipe"
)

// Login POST /login
// 是否登录成功由调用方根据 token 是否存在判断
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	data, err := c.do(ctx, OpLogin, http.MethodPost, "/login", nil, models.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	result := &models.AuthResult{}
	if len(data) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", OpLogin, err)
	}
	return result, nil
}

// FetchRecipes GET /recipes，过滤条件作为查询参数
// 返回值的 Raw 为服务器原始响应，重新编码时原样输出
func (c *Client) FetchRecipes(ctx context.Context, filter models.RecipeFilter) (*models.RecipeList, error) {
	data, err := c.do(ctx, OpFetchRecipes, http.MethodGet, "/recipes", filter.Query(), nil)
	if err != nil {
		return nil, err
	}
	list := &models.RecipeList{Items: []models.Recipe{}}
	if len(data) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", OpFetchRecipes, err)
	}
	return list, nil
}

// CreateRecipe POST /recipes，请求体不含 id
func (c *Client) CreateRecipe(ctx context.Context, recipe models.Recipe) (*models.MutationResult, error) {
	data, err := c.do(ctx, OpCreateRecipe, http.MethodPost, "/recipes", nil, recipe.Payload())
	if err != nil {
		return nil, err
	}
	return decodeMutation(OpCreateRecipe, data)
}

// UpdateRecipe PUT /recipes/{id}
func (c *Client) UpdateRecipe(ctx context.Context, id int64, recipe models.Recipe) (*models.MutationResult, error) {
	data, err := c.do(ctx, OpUpdateRecipe, http.MethodPut, recipePath(id), nil, recipe.Payload())
	if err != nil {
		return nil, err
	}
	return decodeMutation(OpUpdateRecipe, data)
}

// DeleteRecipe DELETE /recipes/{id}，无请求体
func (c *Client) DeleteRecipe(ctx context.Context, id int64) (*models.MutationResult, error) {
	data, err := c.do(ctx, OpDeleteRecipe, http.MethodDelete, recipePath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeMutation(OpDeleteRecipe, data)
}

func recipePath(id int64) string {
	return "/recipes/" + strconv.FormatInt(id, 10)
}

func decodeMutation(op string, data []byte) (*models.MutationResult, error) {
	result := &models.MutationResult{}
	if len(data) == 0 {
		return result, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: decode response: invalid JSON", op)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return result, nil
}

package devserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/recetas/internal/models"
)

// Handler 食谱接口处理器
type Handler struct {
	store  *Store
	tokens *TokenIssuer
	logger *slog.Logger
}

// NewHandler 创建处理器
func NewHandler(store *Store, tokens *TokenIssuer, log *slog.Logger) *Handler {
	return &Handler{store: store, tokens: tokens, logger: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestResponse(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		badRequestResponse(c, "email and password are required")
		return
	}

	u, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		unauthorizedResponse(c, "bad credentials")
		return
	}
	token, err := h.tokens.GenerateToken(u)
	if err != nil {
		h.logger.Error("generate token failed", "email", u.Email, "error", err)
		internalErrorResponse(c, "could not issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "usuario": u})
}

// ListRecipes GET /recipes?id=&myRecipes=&tipoId=
func (h *Handler) ListRecipes(c *gin.Context) {
	var q recipeQuery

	if s := c.Query("id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			badRequestResponse(c, "invalid id")
			return
		}
		q.ID = id
	}
	if s := c.Query("tipoId"); s != "" {
		tipo, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			badRequestResponse(c, "invalid tipoId")
			return
		}
		q.TipoID = tipo
	}
	if mine, _ := strconv.ParseBool(c.Query("myRecipes")); mine {
		owner := currentUser(c).Email
		q.Owner = &owner
	}

	c.JSON(http.StatusOK, h.store.List(q))
}

// CreateRecipe POST /recipes
func (h *Handler) CreateRecipe(c *gin.Context) {
	u := currentUser(c)
	if !u.canWrite() {
		forbiddenResponse(c, "role not allowed to create recipes")
		return
	}

	recipe, ok := bindRecipe(c)
	if !ok {
		return
	}
	created, err := h.store.Create(recipe, u.Email)
	if err != nil {
		h.storeError(c, err)
		return
	}
	h.logger.Info("recipe created", "id", created.ID, "owner", u.Email)
	c.JSON(http.StatusCreated, gin.H{
		"mensaje": "Receta creada correctamente y enviada para validación",
		"receta":  created,
	})
}

// UpdateRecipe PUT /recipes/:id
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if !h.authorizeOwner(c, id) {
		return
	}
	recipe, ok := bindRecipe(c)
	if !ok {
		return
	}
	updated, err := h.store.Update(id, recipe)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mensaje": "Receta actualizada correctamente",
		"receta":  updated,
	})
}

// DeleteRecipe DELETE /recipes/:id
func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if !h.authorizeOwner(c, id) {
		return
	}
	if err := h.store.Delete(id); err != nil {
		h.storeError(c, err)
		return
	}
	h.logger.Info("recipe deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"mensaje": "Receta eliminada correctamente"})
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// authorizeOwner 仅所有者或管理员可修改；写出错误响应时返回 false
func (h *Handler) authorizeOwner(c *gin.Context, id int64) bool {
	owner, err := h.store.Owner(id)
	if err != nil {
		h.storeError(c, err)
		return false
	}
	u := currentUser(c)
	if u.Rol != RoleAdmin && (owner != u.Email || !u.canWrite()) {
		forbiddenResponse(c, "not allowed to modify this recipe")
		return false
	}
	return true
}

func (h *Handler) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNotFound):
		notFoundResponse(c, "recipe")
	case errors.Is(err, errDuplicateName):
		conflictResponse(c, "a recipe with that name already exists")
	case errors.Is(err, errUnknownCategory):
		errorResponse(c, http.StatusUnprocessableEntity, "unknown tipoId")
	default:
		h.logger.Error("store operation failed", "error", err)
		internalErrorResponse(c, "internal error")
	}
}

// bindRecipe 解析并校验请求体；失败时已写出 400
func bindRecipe(c *gin.Context) (models.Recipe, bool) {
	var r models.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequestResponse(c, "invalid request body")
		return r, false
	}
	if err := r.Validate(); err != nil {
		badRequestResponse(c, err.Error())
		return r, false
	}
	return r, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "invalid id")
		return 0, false
	}
	return id, true
}

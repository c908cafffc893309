package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/houzhh15/recetas/internal/models"
)

// 角色
const (
	RoleAdmin   = "admin"
	RoleChef    = "chef"
	RoleVisitor = "visitante"
)

var (
	errNotFound        = errors.New("not found")
	errDuplicateName   = errors.New("duplicate name")
	errUnknownCategory = errors.New("unknown category")
	errBadCredentials  = errors.New("bad credentials")
)

// User 后端用户
type User struct {
	Email        string `json:"email"`
	Nombre       string `json:"nombre"`
	Rol          string `json:"rol"`
	passwordHash []byte
}

// canWrite 是否允许创建食谱
func (u User) canWrite() bool {
	return u.Rol == RoleAdmin || u.Rol == RoleChef
}

type storedRecipe struct {
	recipe models.Recipe
	owner  string
}

// Store 内存数据：用户、分类、食谱
type Store struct {
	mu         sync.RWMutex
	users      map[string]User
	categories map[int64]string
	recipes    map[int64]*storedRecipe
	nextID     int64
}

// NewStore 创建空存储，仅包含默认分类
func NewStore() *Store {
	return &Store{
		users: map[string]User{},
		categories: map[int64]string{
			1: "Entrada",
			2: "Plato principal",
			3: "Postre",
			4: "Bebida",
		},
		recipes: map[int64]*storedRecipe{},
		nextID:  1,
	}
}

// AddUser 添加用户，密码以 bcrypt 保存
func (s *Store) AddUser(email, nombre, rol, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(email)] = User{Email: email, Nombre: nombre, Rol: rol, passwordHash: hash}
	return nil
}

// Authenticate 校验邮箱与密码
func (s *Store) Authenticate(email, password string) (User, error) {
	s.mu.RLock()
	u, ok := s.users[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return User{}, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return User{}, errBadCredentials
	}
	return u, nil
}

// User 按邮箱查找用户
func (s *Store) User(email string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(email)]
	return u, ok
}

// recipeQuery 列表过滤条件
type recipeQuery struct {
	ID     int64
	Owner  *string
	TipoID int64
}

// List 按 ID 升序返回符合条件的食谱
func (s *Store) List(q recipeQuery) []models.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Recipe{}
	for id, sr := range s.recipes {
		if q.ID != 0 && id != q.ID {
			continue
		}
		if q.Owner != nil && sr.owner != *q.Owner {
			continue
		}
		if q.TipoID != 0 && sr.recipe.TipoID != q.TipoID {
			continue
		}
		out = append(out, sr.recipe)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create 保存新食谱并分配 ID
func (s *Store) Create(r models.Recipe, owner string) (models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[r.TipoID]; !ok {
		return models.Recipe{}, errUnknownCategory
	}
	for _, sr := range s.recipes {
		if sameName(sr.recipe.Nombre, r.Nombre) {
			return models.Recipe{}, errDuplicateName
		}
	}
	r.ID = s.nextID
	s.nextID++
	r.NumberSteps()
	s.recipes[r.ID] = &storedRecipe{recipe: r, owner: owner}
	return r, nil
}

// Owner 返回食谱所有者
func (s *Store) Owner(id int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sr, ok := s.recipes[id]
	if !ok {
		return "", errNotFound
	}
	return sr.owner, nil
}

// Update 覆盖已有食谱，保留 ID 与所有者；不能改成其他食谱已用的名称
func (s *Store) Update(id int64, r models.Recipe) (models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.recipes[id]
	if !ok {
		return models.Recipe{}, errNotFound
	}
	if _, ok := s.categories[r.TipoID]; !ok {
		return models.Recipe{}, errUnknownCategory
	}
	for otherID, other := range s.recipes {
		if otherID != id && sameName(other.recipe.Nombre, r.Nombre) {
			return models.Recipe{}, errDuplicateName
		}
	}
	r.ID = id
	r.NumberSteps()
	sr.recipe = r
	return r, nil
}

// Delete 删除食谱
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[id]; !ok {
		return errNotFound
	}
	delete(s.recipes, id)
	return nil
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Seed 预置示例数据
func (s *Store) Seed() error {
	users := []struct{ email, nombre, rol, password string }{
		{"admin@recetas.dev", "Administración", RoleAdmin, "admin123"},
		{"chef@recetas.dev", "Chef Demo", RoleChef, "chef123"},
		{"visita@recetas.dev", "Visitante", RoleVisitor, "visita123"},
	}
	for _, u := range users {
		if err := s.AddUser(u.email, u.nombre, u.rol, u.password); err != nil {
			return err
		}
	}
	_, err := s.Create(models.Recipe{
		Nombre:        "Flan casero",
		Descripcion:   "Flan de huevo con caramelo",
		FechaCreacion: "2024-01-15",
		TipoID:        3,
		Porciones:     6,
		Ingredientes: []models.Ingredient{
			{Nombre: "Huevos", Cantidad: "4"},
			{Nombre: "Leche", Cantidad: "500 ml"},
			{Nombre: "Azúcar", Cantidad: "150 g"},
		},
		Pasos: []models.Step{
			{Descripcion: "Preparar el caramelo en la flanera"},
			{Descripcion: "Batir huevos, leche y azúcar"},
			{Descripcion: "Cocinar a baño María 45 minutos"},
		},
	}, "chef@recetas.dev")
	return err
}

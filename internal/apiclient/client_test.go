package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/houzhh15/recetas/internal/kvstore"
	"github.com/houzhh15/recetas/internal/models"
	"github.com/houzhh15/recetas/internal/serverconfig"
)

// recordedRequest 保存 mock 服务器收到的请求
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) add(req recordedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

// newMockServer 启动 mock 服务器并返回已配置好地址的客户端
func newMockServer(t *testing.T, status int, response string, opts ...Option) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.add(recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	store := serverconfig.New(kvstore.NewMemoryStore())
	require.NoError(t, store.SetServerURL(srv.URL))
	return New(store, opts...), rec
}

func sampleRecipe() models.Recipe {
	return models.Recipe{
		ID:            5,
		Nombre:        "Tarta de manzana",
		Descripcion:   "Clásica",
		FechaCreacion: "2024-03-10",
		TipoID:        4,
		Porciones:     8,
		Ingredientes:  []models.Ingredient{{Nombre: "Manzana", Cantidad: "3"}},
		Pasos:         []models.Step{{Orden: 1, Descripcion: "Hornear"}},
	}
}

type countingTransport struct {
	calls atomic.Int32
}

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, errors.New("unexpected network call")
}

func TestUnconfiguredMakesNoNetworkCalls(t *testing.T) {
	transport := &countingTransport{}
	c := New(serverconfig.New(kvstore.NewMemoryStore()), WithHTTPClient(&http.Client{Transport: transport}))
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrUnconfigured)
	_, err = c.FetchRecipes(ctx, models.RecipeFilter{MyRecipes: true})
	assert.ErrorIs(t, err, ErrUnconfigured)
	_, err = c.CreateRecipe(ctx, sampleRecipe())
	assert.ErrorIs(t, err, ErrUnconfigured)
	_, err = c.UpdateRecipe(ctx, 5, sampleRecipe())
	assert.ErrorIs(t, err, ErrUnconfigured)
	_, err = c.DeleteRecipe(ctx, 5)
	assert.ErrorIs(t, err, ErrUnconfigured)

	assert.Equal(t, int32(0), transport.calls.Load())

	_, hasStatus := StatusCode(err)
	assert.False(t, hasStatus)
}

func TestLoginSuccess(t *testing.T) {
	c, reqs := newMockServer(t, http.StatusOK, `{"token":"t1"}`)

	res, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t1", res.Token)
	assert.JSONEq(t, `{"token":"t1"}`, string(res.Raw))

	require.Len(t, reqs.all(), 1)
	got := reqs.all()[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/login", got.Path)
	assert.JSONEq(t, `{"email":"a@b.com","password":"pw"}`, string(got.Body))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
	assert.Empty(t, got.Header.Get("Authorization"), "no token is attached by default")
}

func TestLoginBadCredentials(t *testing.T) {
	c, _ := newMockServer(t, http.StatusUnauthorized, `{"error":"bad credentials"}`)

	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Status)
	assert.JSONEq(t, `{"error":"bad credentials"}`, string(he.Body))
	assert.Equal(t, "bad credentials", he.Message)

	status, ok := StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, 401, status)
}

func TestLoginWithoutTokenIsNotAnError(t *testing.T) {
	c, _ := newMockServer(t, http.StatusOK, `{"mensaje":"usuario pendiente"}`)

	res, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.False(t, res.HasToken())
}

func TestFetchRecipesMyRecipes(t *testing.T) {
	body := `[{"id":1,"nombre":"Flan","descripcion":"Postre","fechaCreacion":"2024-01-01","tipoId":3,"porciones":6,"ingredientes":[{"nombre":"Huevo","cantidad":"4"}],"pasos":[{"orden":1,"descripcion":"Batir"}]}]`
	c, reqs := newMockServer(t, http.StatusOK, body)

	recipes, err := c.FetchRecipes(context.Background(), models.RecipeFilter{MyRecipes: true})
	require.NoError(t, err)

	require.Len(t, reqs.all(), 1)
	got := reqs.all()[0]
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/recipes", got.Path)
	assert.Equal(t, "myRecipes=true", got.Query)
	assert.Empty(t, got.Body)

	// 往返：解码结果重新编码后与服务器返回一致
	out, err := json.Marshal(recipes)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))
}

func TestFetchRecipesKeepsServerBody(t *testing.T) {
	body := `[{"id":1,"nombre":"Flan","descripcion":"Postre","fechaCreacion":"2024-01-01","tipoId":"3","porciones":6,"ingredientes":[],"pasos":[],"estado":"pendiente","usuarioId":9}]`
	c, _ := newMockServer(t, http.StatusOK, body)

	recipes, err := c.FetchRecipes(context.Background(), models.RecipeFilter{})
	require.NoError(t, err)

	require.Len(t, recipes.Items, 1)
	assert.Equal(t, int64(3), recipes.Items[0].TipoID, "numeric string tipoId")

	out, err := json.Marshal(recipes)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out), "fields outside the recipe schema survive")

	items, err := recipes.RawItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, string(items[0]), `"usuarioId":9`)
}

func TestFetchRecipesByID(t *testing.T) {
	c, reqs := newMockServer(t, http.StatusOK, `[]`)

	recipes, err := c.FetchRecipes(context.Background(), models.RecipeFilter{ID: 17})
	require.NoError(t, err)
	assert.Empty(t, recipes.Items)
	assert.Equal(t, "id=17", reqs.all()[0].Query)
}

func TestCreateRecipeOmitsID(t *testing.T) {
	c, reqs := newMockServer(t, http.StatusCreated, `{"mensaje":"Receta creada","receta":{"id":11,"nombre":"Tarta de manzana"}}`)

	res, err := c.CreateRecipe(context.Background(), sampleRecipe())
	require.NoError(t, err)
	assert.Equal(t, "Receta creada", res.Mensaje)
	created, ok := res.Recipe()
	require.True(t, ok)
	assert.Equal(t, int64(11), created.ID)

	got := reqs.all()[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/recipes", got.Path)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(got.Body, &sent))
	assert.NotContains(t, sent, "id")
	assert.Equal(t, "Tarta de manzana", sent["nombre"])
	assert.Equal(t, float64(8), sent["porciones"])
}

func TestUpdateRecipe(t *testing.T) {
	c, reqs := newMockServer(t, http.StatusOK, `{"mensaje":"ok"}`)

	res, err := c.UpdateRecipe(context.Background(), 5, sampleRecipe())
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Mensaje)

	got := reqs.all()[0]
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/recipes/5", got.Path)
	assert.Contains(t, string(got.Body), `"pasos":[{"orden":1,"descripcion":"Hornear"}]`)
}

func TestDeleteRecipe(t *testing.T) {
	c, reqs := newMockServer(t, http.StatusOK, `{"mensaje":"Receta eliminada"}`)

	res, err := c.DeleteRecipe(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Receta eliminada", res.Mensaje)

	got := reqs.all()[0]
	assert.Equal(t, http.MethodDelete, got.Method)
	assert.Equal(t, "/recipes/42", got.Path)
	assert.Empty(t, got.Body)
	assert.Empty(t, got.Header.Get("Content-Type"))
}

func TestDeleteRecipeNoContent(t *testing.T) {
	c, _ := newMockServer(t, http.StatusNoContent, ``)

	res, err := c.DeleteRecipe(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, res.Mensaje)
}

func TestHTTPErrorsCarryStatusAndBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		msg    string
	}{
		{"bad request", 400, `{"error":"Faltan campos"}`, "Faltan campos"},
		{"forbidden", 403, `{"error":"rol no autorizado"}`, "rol no autorizado"},
		{"not found", 404, `{"error":"no existe"}`, "no existe"},
		{"conflict", 409, `{"error":"duplicada"}`, "duplicada"},
		{"unprocessable", 422, `{"error":"categoría"}`, "categoría"},
		{"server error plain text", 500, `boom`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newMockServer(t, tt.status, tt.body)

			_, err := c.CreateRecipe(context.Background(), sampleRecipe())

			var he *HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.status, he.Status)
			assert.Equal(t, tt.body, string(he.Body))
			assert.Equal(t, tt.msg, he.Message)
			assert.Equal(t, OpCreateRecipe, he.Op)
		})
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := New(serverconfig.Static(srv.URL), WithTimeout(100*time.Millisecond))

	start := time.Now()
	_, err := c.FetchRecipes(context.Background(), models.RecipeFilter{})
	assert.Less(t, time.Since(start), 3*time.Second, "request must not hang past the timeout")

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout)
	assert.Equal(t, 100*time.Millisecond, ne.Limit)
	assert.True(t, IsTimeout(err))
	_, hasStatus := StatusCode(err)
	assert.False(t, hasStatus)
}

func TestCallerDeadlineIsNotReportedAsClientLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := New(serverconfig.Static(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.FetchRecipes(ctx, models.RecipeFilter{})

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout)
	assert.Zero(t, ne.Limit)
	assert.NotContains(t, err.Error(), "10s")
}

func TestErrorMessageIgnoresNonStringFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error wins", `{"error":"duplicada","mensaje":"otro"}`, "duplicada"},
		{"numeric mensaje", `{"error":"duplicada","mensaje":1}`, "duplicada"},
		{"object error falls back", `{"error":{"code":7},"mensaje":"sin permiso"}`, "sin permiso"},
		{"no known fields", `{"detail":"x"}`, ""},
		{"array body", `[1,2]`, ""},
		{"not json", `boom`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body)))
		})
	}
}

func TestHTTPErrorTruncatesOnCharacterBoundary(t *testing.T) {
	he := &HTTPError{Op: OpFetchRecipes, Status: 500, Body: []byte(strings.Repeat("ñ", 300))}

	msg := he.Error()
	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, strings.Repeat("ñ", 200)+"..."))
	assert.Equal(t, "año", truncate("año", 3))
}

func TestDefaultTimeout(t *testing.T) {
	c := New(serverconfig.Static("https://api.example.com"))
	assert.Equal(t, 10*time.Second, c.Timeout())
	assert.Equal(t, 10*time.Second, New(nil, WithTimeout(0)).Timeout())
}

func TestConnectionRefusedIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(serverconfig.Static(url))
	_, err := c.DeleteRecipe(context.Background(), 1)

	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.False(t, ne.Timeout)
	_, hasStatus := StatusCode(err)
	assert.False(t, hasStatus)
}

func TestTrailingSlashBaseURL(t *testing.T) {
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c := New(serverconfig.Static(srv.URL + "/"))
	_, err := c.FetchRecipes(context.Background(), models.RecipeFilter{})
	require.NoError(t, err)
	assert.Equal(t, "/recipes", path.Load())
}

type staticToken string

func (s staticToken) Token() (string, bool, error) { return string(s), s != "", nil }

func TestTokenAttachmentIsOptIn(t *testing.T) {
	c, reqs := newMockServer(t, http.StatusOK, `[]`, WithTokenSource(staticToken("t1")))

	_, err := c.FetchRecipes(context.Background(), models.RecipeFilter{MyRecipes: true})
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", reqs.all()[0].Header.Get("Authorization"))
}

func TestDoReturnsExactBody(t *testing.T) {
	body := `{"a":[1,2,{"b":null}],"c":"ñ"}`
	c, reqs := newMockServer(t, http.StatusOK, body)

	raw, err := c.Do(context.Background(), http.MethodPost, "/echo", nil, map[string]int{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))
	assert.Equal(t, "/echo", reqs.all()[0].Path)
}

func TestInvalidSuccessBody(t *testing.T) {
	c, _ := newMockServer(t, http.StatusOK, `<html>`)

	_, err := c.FetchRecipes(context.Background(), models.RecipeFilter{})
	require.Error(t, err)
	var he *HTTPError
	assert.False(t, errors.As(err, &he))
	var ne *NetworkError
	assert.False(t, errors.As(err, &ne))
}

// handlerTransport 在进程内直接调用 handler，用于固定域名的场景测试
type handlerTransport struct {
	h http.Handler
}

func (ht handlerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	ht.h.ServeHTTP(rec, r)
	return rec.Result(), nil
}

func TestLoginScenarioAgainstSavedServer(t *testing.T) {
	store := serverconfig.New(kvstore.NewMemoryStore())
	require.NoError(t, store.Save("https://api.example.com"))

	var host atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		host.Store(r.URL.Host)
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"bad credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"token":"t1"}`)
	})
	c := New(store, WithHTTPClient(&http.Client{Transport: handlerTransport{h: mux}}))

	res, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"t1"}`, string(res.Raw))
	assert.Equal(t, "api.example.com", host.Load())

	_, err = c.Login(context.Background(), "a@b.com", "wrong")
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, 401, he.Status)
	assert.JSONEq(t, `{"error":"bad credentials"}`, string(he.Body))
}

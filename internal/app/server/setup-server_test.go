package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataaccess-backend/internal/application/services"
	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/infrastructure/repositories/mem"
	"dataaccess-backend/internal/security"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	r := mem.NewRegistry[*models.Todo]()
	r.Seed(models.DefaultTodos()...)

	resolver := security.NewResolver(security.DefaultRoles(), "guest")
	todos := services.NewTodoService(r, services.WithResolver[*models.Todo](resolver))
	return NewRouter(Options{}, todos)
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorsResponse struct {
	Errors []struct {
		Code    string `json:"ERROR_CODE"`
		Desc    string `json:"ERROR_DESC"`
		Element string `json:"UI_ELEMENT_NAME"`
	} `json:"ERRORS"`
}

func TestRouter_Find(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/todos?name=wake&offset=0&limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(HeaderRowCount))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var todos []models.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	require.Len(t, todos, 1)
	assert.Equal(t, "wake up", todos[0].Name)

	rec = do(t, h, http.MethodGet, "/api/v1/todos?name=zzz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestRouter_StatusMapping(t *testing.T) {
	h := newTestRouter(t)
	admin := map[string]string{HeaderRole: "admin", HeaderUserID: "1"}

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		headers map[string]string
		status  int
		code    string
	}{
		{name: "malformed filter key", method: http.MethodGet, target: "/api/v1/todos?na%20me=x", status: http.StatusBadRequest, code: "MALFORMED_FILTER"},
		{name: "malformed limit", method: http.MethodGet, target: "/api/v1/todos?limit=ten", status: http.StatusBadRequest, code: "MALFORMED_FILTER"},
		{name: "ambiguous find one", method: http.MethodGet, target: "/api/v1/todos/one?name=a", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown id", method: http.MethodGet, target: "/api/v1/todos/42", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "bad id", method: http.MethodGet, target: "/api/v1/todos/x", status: http.StatusBadRequest, code: "INVALID"},
		{name: "guest may not create", method: http.MethodPost, target: "/api/v1/todos", body: `{"name":"walk"}`, status: http.StatusForbidden, code: "ACCESS_DENIED"},
		{name: "missing name", method: http.MethodPost, target: "/api/v1/todos", body: `{"name":""}`, headers: admin, status: http.StatusBadRequest, code: "REQUIRED"},
		{name: "bad user id header", method: http.MethodGet, target: "/api/v1/todos", headers: map[string]string{HeaderUserID: "bob"}, status: http.StatusBadRequest, code: "INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body, tt.headers)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body errorsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body.Errors)
			assert.Equal(t, tt.code, body.Errors[0].Code)
		})
	}
}

func TestRouter_Lifecycle(t *testing.T) {
	h := newTestRouter(t)
	admin := map[string]string{HeaderRole: "admin", HeaderUserID: "9"}

	rec := do(t, h, http.MethodPost, "/api/v1/todos", `{"name":"walk the dog"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(4), created.ID)
	assert.Equal(t, int64(9), created.CreatedBy)

	rec = do(t, h, http.MethodPut, "/api/v1/todos/4", `{"name":"walk the cat"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/todos/one?name=cat", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found models.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Equal(t, int64(2), found.Version)

	rec = do(t, h, http.MethodGet, "/api/v1/todos/count", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":4}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/v1/todos/4", "", admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/todos/one?name=cat", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

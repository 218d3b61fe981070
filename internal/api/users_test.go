package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yogeshknaik/MCP-server/internal/domain"
	"github.com/Yogeshknaik/MCP-server/internal/store"
)

const testDeleteToken = "test-secret"

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	r := chi.NewRouter()
	NewUserHandler(repo, testDeleteToken).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createUser(t *testing.T, r chi.Router, name, email, city string) domain.User {
	t.Helper()
	body := fmt.Sprintf(`{"name": %q, "email": %q, "city": %q}`, name, email, city)
	w := doJSON(t, r, http.MethodPost, "/api/users", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func TestCreateUserEndpoint(t *testing.T) {
	r := newTestRouter(t)

	user := createUser(t, r, "Ada", "ada@example.com", "London")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "London", user.City)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateUserValidation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{`},
		{"missing name", `{"email": "a@example.com"}`},
		{"missing email", `{"name": "Ada"}`},
		{"invalid email", `{"name": "Ada", "email": "not-an-email"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	r := newTestRouter(t)
	createUser(t, r, "Ada", "ada@example.com", "London")

	w := doJSON(t, r, http.MethodPost, "/api/users", `{"name": "Other", "email": "ada@example.com"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetUserEndpoint(t *testing.T) {
	r := newTestRouter(t)
	user := createUser(t, r, "Ada", "ada@example.com", "London")

	w := doJSON(t, r, http.MethodGet, "/api/users/"+user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, user.ID, got.ID)

	w = doJSON(t, r, http.MethodGet, "/api/users/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsersEndpoint(t *testing.T) {
	r := newTestRouter(t)
	createUser(t, r, "Ada", "ada@example.com", "London")
	createUser(t, r, "Grace", "grace@example.com", "NYC")

	w := doJSON(t, r, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)

	var all []domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = doJSON(t, r, http.MethodGet, "/api/users?city=NYC", "")
	require.Equal(t, http.StatusOK, w.Code)

	var filtered []domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "Grace", filtered[0].Name)

	// Empty result is a JSON array, not null.
	w = doJSON(t, r, http.MethodGet, "/api/users?city=Atlantis", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestUpdateUserEndpoint(t *testing.T) {
	r := newTestRouter(t)
	user := createUser(t, r, "Ada", "ada@example.com", "London")

	w := doJSON(t, r, http.MethodPut, "/api/users/"+user.ID, `{"city": "Paris"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "Paris", got.City)

	w = doJSON(t, r, http.MethodPut, "/api/users/"+user.ID, `{"email": "bad"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/users/does-not-exist", `{"name": "X"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateUserDuplicateEmail(t *testing.T) {
	r := newTestRouter(t)
	createUser(t, r, "Ada", "ada@example.com", "London")
	grace := createUser(t, r, "Grace", "grace@example.com", "NYC")

	w := doJSON(t, r, http.MethodPut, "/api/users/"+grace.ID, `{"email": "ada@example.com"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteUserEndpoint(t *testing.T) {
	r := newTestRouter(t)
	user := createUser(t, r, "Ada", "ada@example.com", "London")

	w := doJSON(t, r, http.MethodDelete, "/api/users/"+user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "deleted", resp["status"])
	assert.Equal(t, user.ID, resp["id"])

	w = doJSON(t, r, http.MethodDelete, "/api/users/"+user.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteByEmailEndpoint(t *testing.T) {
	r := newTestRouter(t)
	createUser(t, r, "Ada", "ada@example.com", "London")

	w := doJSON(t, r, http.MethodGet, "/api/users/delete?email=ada@example.com&token=wrong", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/users/delete?token="+testDeleteToken, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/users/delete?email=ada@example.com&token="+testDeleteToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "deleted", resp["status"])
	assert.Equal(t, "ada@example.com", resp["email"])

	w = doJSON(t, r, http.MethodGet, "/api/users/delete?email=ada@example.com&token="+testDeleteToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteByEmailDisabledWithoutToken(t *testing.T) {
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	r := chi.NewRouter()
	NewUserHandler(repo, "").RegisterRoutes(r)

	w := doJSON(t, r, http.MethodGet, "/api/users/delete?email=a@example.com&token=", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

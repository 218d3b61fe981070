package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/Yogeshknaik/MCP-server/internal/domain"
	"github.com/Yogeshknaik/MCP-server/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UserHandler handles user CRUD requests.
type UserHandler struct {
	repo store.Repository
	// deleteToken is the shared secret required by the delete-by-email
	// endpoint. Single-token equality, not a real auth scheme.
	deleteToken string
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(repo store.Repository, deleteToken string) *UserHandler {
	return &UserHandler{repo: repo, deleteToken: deleteToken}
}

// RegisterRoutes registers the user CRUD routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/delete", h.DeleteByEmail)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

type userPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	City  string `json:"city"`
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(payload.Email); err != nil {
		Error(w, http.StatusBadRequest, "valid email is required")
		return
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		Name:      payload.Name,
		Email:     payload.Email,
		City:      payload.City,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			Error(w, http.StatusConflict, "email already registered")
			return
		}
		slog.Error("Failed to create user", "error", err)
		Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	JSON(w, http.StatusCreated, user)
}

// List handles GET /api/users with an optional ?city= filter. This is also
// the user-lookup endpoint the chat tools consume.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")

	users, err := h.repo.ListUsers(r.Context(), city)
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	JSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.repo.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("Failed to get user", "user_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	JSON(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}. Empty payload fields keep their
// current values.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("Failed to get user", "user_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	if payload.Name != "" {
		user.Name = payload.Name
	}
	if payload.Email != "" {
		if _, err := mail.ParseAddress(payload.Email); err != nil {
			Error(w, http.StatusBadRequest, "valid email is required")
			return
		}
		user.Email = payload.Email
	}
	if payload.City != "" {
		user.City = payload.City
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.repo.UpdateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			Error(w, http.StatusConflict, "email already registered")
			return
		}
		slog.Error("Failed to update user", "user_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	JSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("Failed to delete user", "user_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// DeleteByEmail handles GET /api/users/delete?email=&token=. This is the
// deletion endpoint the chat tool consumes; the token must equal the
// configured shared secret.
func (h *UserHandler) DeleteByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	token := r.URL.Query().Get("token")

	if h.deleteToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.deleteToken)) != 1 {
		Error(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if email == "" {
		Error(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.repo.DeleteUserByEmail(r.Context(), email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("Failed to delete user by email", "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "deleted", "email": email})
}

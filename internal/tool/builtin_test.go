package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, Collaborators{}))

	descs := r.Descriptors()
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}

	assert.Equal(t, []string{"deleteUserlData", "getUsersData", "getWeatherData"}, names)
}

func TestWeatherToolForwardsPayloadUnmodified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Paris", r.URL.Query().Get("city"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"temp": "37c", "condition": "sunny"}`))
	}))
	defer srv.Close()

	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, Collaborators{WeatherURL: srv.URL}))

	result, err := r.Execute(context.Background(), "getWeatherData", map[string]any{"city": "Paris"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"temp": "37c", "condition": "sunny"}, result)
}

func TestWeatherToolValidatesBeforeCalling(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, Collaborators{WeatherURL: srv.URL}))

	_, err := r.Execute(context.Background(), "getWeatherData", map[string]any{})

	assert.ErrorIs(t, err, ErrInvalidArguments)
	assert.Zero(t, calls.Load())
}

func TestUsersToolForwardsArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Berlin", r.URL.Query().Get("city"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name": "Ada", "city": "Berlin"}]`))
	}))
	defer srv.Close()

	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, Collaborators{UsersURL: srv.URL}))

	result, err := r.Execute(context.Background(), "getUsersData", map[string]any{"city": "Berlin"})
	require.NoError(t, err)

	users, ok := result.([]any)
	require.True(t, ok)
	require.Len(t, users, 1)
	assert.Equal(t, map[string]any{"name": "Ada", "city": "Berlin"}, users[0])
}

func TestDeleteToolPassesEmailAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/delete", r.URL.Path)
		assert.Equal(t, "ada@example.com", r.URL.Query().Get("email"))
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "deleted", "email": "ada@example.com"}`))
	}))
	defer srv.Close()

	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, Collaborators{UsersURL: srv.URL, DeleteToken: "secret"}))

	result, err := r.Execute(context.Background(), "deleteUserlData", map[string]any{"email": "ada@example.com"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"status": "deleted", "email": "ada@example.com"}, result)
}

func TestToolCollaboratorErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, Collaborators{WeatherURL: srv.URL}))

	_, err := r.Execute(context.Background(), "getWeatherData", map[string]any{"city": "Paris"})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "getWeatherData", execErr.Tool)
	assert.Contains(t, execErr.Error(), "502")
}

func TestToolNonJSONBodyForwardedAsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text answer"))
	}))
	defer srv.Close()

	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, Collaborators{WeatherURL: srv.URL}))

	result, err := r.Execute(context.Background(), "getWeatherData", map[string]any{"city": "Paris"})
	require.NoError(t, err)

	assert.Equal(t, "plain text answer", result)
}

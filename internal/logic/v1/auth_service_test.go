package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barruu/console/internal/core/api"
	"github.com/barruu/console/internal/core/domain"
	"github.com/barruu/console/internal/core/session"
)

func newAuthFixture(t *testing.T, handler http.Handler) (*AuthService, *session.MemStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	store := session.NewMemStore()
	client := api.New(api.Config{BaseURL: server.URL, Store: store})
	return NewAuthService(client, store), store
}

func TestLoginPersistsSession(t *testing.T) {
	svc, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		require.Equal(t, "maya@example.com", body["email"])

		json.NewEncoder(w).Encode(domain.AuthEnvelope{
			Success: true,
			Token:   "abc",
			User:    &domain.User{ID: "u1", Username: "maya", Role: domain.RoleDeveloper},
		})
	}))

	user, err := svc.Login(context.Background(), "maya@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, user.Role)

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.Token)
	assert.Equal(t, "u1", sess.User.ID)
	assert.True(t, sess.User.IsDeveloper())
}

func TestLoginRefusedLeavesSessionUntouched(t *testing.T) {
	svc, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.AuthEnvelope{Success: false, Error: "wrong password"})
	}))
	require.NoError(t, store.SetAuth("old-token", &domain.User{ID: "u0"}))

	_, err := svc.Login(context.Background(), "maya@example.com", "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "wrong password")

	sess, _ := store.Get()
	assert.Equal(t, "old-token", sess.Token)
}

func TestLoginMapsUnauthorizedStatus(t *testing.T) {
	svc, _ := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := svc.Login(context.Background(), "maya@example.com", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterPersistsSession(t *testing.T) {
	svc, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		json.NewEncoder(w).Encode(domain.AuthEnvelope{
			Success: true,
			Token:   "fresh",
			User:    &domain.User{ID: "u2", Username: "nilo", Role: domain.RoleUser},
		})
	}))

	user, err := svc.Register(context.Background(), Credentials{Username: "nilo", Email: "n@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)

	sess, _ := store.Get()
	assert.Equal(t, "fresh", sess.Token)
}

func TestRegisterConflict(t *testing.T) {
	svc, _ := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "taken"})
	}))

	_, err := svc.Register(context.Background(), Credentials{Username: "nilo", Email: "n@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogoutIdempotent(t *testing.T) {
	svc, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("logout must not call the API")
	}))
	require.NoError(t, store.SetAuth("tok", &domain.User{ID: "u1"}))

	require.NoError(t, svc.Logout())
	require.NoError(t, svc.Logout())

	sess, _ := store.Get()
	assert.False(t, sess.Authenticated())
}

func TestCurrentUserWithoutTokenSkipsAPI(t *testing.T) {
	var calls atomic.Int32
	svc, _ := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	_, err := svc.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, calls.Load())
}

func TestCurrentUserRefreshesSnapshot(t *testing.T) {
	svc, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(domain.AuthEnvelope{
			Success: true,
			User:    &domain.User{ID: "u1", Role: domain.RoleAdmin},
		})
	}))
	require.NoError(t, store.SetAuth("tok", &domain.User{ID: "u1", Role: domain.RoleUser}))

	user, err := svc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	// The cached snapshot follows the server.
	sess, _ := store.Get()
	assert.Equal(t, domain.RoleAdmin, sess.User.Role)
	assert.Equal(t, "tok", sess.Token)
}

func TestCurrentUserRejectionClearsSession(t *testing.T) {
	svc, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	require.NoError(t, store.SetAuth("stale", &domain.User{ID: "u1"}))

	_, err := svc.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	sess, _ := store.Get()
	assert.False(t, sess.Authenticated())
}

func TestCurrentUserNetworkFailurePreservesSession(t *testing.T) {
	store := session.NewMemStore()
	client := api.New(api.Config{BaseURL: "http://127.0.0.1:1", Store: store})
	svc := NewAuthService(client, store)
	require.NoError(t, store.SetAuth("tok", &domain.User{ID: "u1"}))

	_, err := svc.CurrentUser(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnreachable)
	assert.NotErrorIs(t, err, ErrSessionExpired)

	sess, _ := store.Get()
	assert.Equal(t, "tok", sess.Token, "a network blip must not log the operator out")
}

func TestCurrentUserNetworkFailureLogsOutWhenConfigured(t *testing.T) {
	store := session.NewMemStore()
	client := api.New(api.Config{BaseURL: "http://127.0.0.1:1", Store: store})
	svc := NewAuthService(client, store)
	svc.LogoutOnNetworkError = true
	require.NoError(t, store.SetAuth("tok", &domain.User{ID: "u1"}))

	_, err := svc.CurrentUser(context.Background())
	require.Error(t, err)

	sess, _ := store.Get()
	assert.False(t, sess.Authenticated())
}

func TestUpdateProfileRefreshesSnapshot(t *testing.T) {
	svc, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/auth/profile", r.URL.Path)
		json.NewEncoder(w).Encode(domain.AuthEnvelope{
			Success: true,
			User:    &domain.User{ID: "u1", Username: "maya-renamed", Role: domain.RoleUser},
		})
	}))
	require.NoError(t, store.SetAuth("tok", &domain.User{ID: "u1", Username: "maya"}))

	user, err := svc.UpdateProfile(context.Background(), domain.ProfileUpdate{Username: "maya-renamed"})
	require.NoError(t, err)
	assert.Equal(t, "maya-renamed", user.Username)

	sess, _ := store.Get()
	assert.Equal(t, "maya-renamed", sess.User.Username)
}

func TestUpgradeToDeveloper(t *testing.T) {
	svc, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/upgrade-to-developer", r.URL.Path)
		json.NewEncoder(w).Encode(domain.AuthEnvelope{
			Success: true,
			User: &domain.User{ID: "u1", Role: domain.RoleDeveloper,
				DeveloperProfile: &domain.DeveloperProfile{Website: "https://maya.dev"}},
		})
	}))
	require.NoError(t, store.SetAuth("tok", &domain.User{ID: "u1", Role: domain.RoleUser}))

	user, err := svc.UpgradeToDeveloper(context.Background(), domain.DeveloperUpgrade{Website: "https://maya.dev"})
	require.NoError(t, err)
	assert.True(t, user.IsDeveloper())
}

func TestCachedUserAndIsAuthenticated(t *testing.T) {
	svc, store := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("cached reads must not call the API")
	}))

	ok, err := svc.IsAuthenticated()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetAuth("tok", &domain.User{ID: "u1", Role: domain.RoleAdmin}))

	ok, err = svc.IsAuthenticated()
	require.NoError(t, err)
	assert.True(t, ok)

	user, err := svc.CachedUser()
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

package v1

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barruu/console/internal/core/api"
	"github.com/barruu/console/internal/core/domain"
	"github.com/barruu/console/internal/core/session"
	logicv1 "github.com/barruu/console/internal/logic/v1"
	"github.com/barruu/console/middleware"
)

// fixture wires the whole gateway stack over a scripted upstream: router ->
// guard -> facades -> client -> httptest server standing in for the remote
// Barruu API.
type fixture struct {
	router   *gin.Engine
	store    *session.MemStore
	upstream map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{upstream: map[string]func(w http.ResponseWriter, r *http.Request){}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		handler, ok := f.upstream[key]
		if !ok {
			t.Errorf("unexpected upstream call: %s", key)
			w.WriteHeader(http.StatusTeapot)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	f.store = session.NewMemStore()
	client := api.New(api.Config{BaseURL: server.URL, Store: f.store})
	auth := logicv1.NewAuthService(client, f.store)
	handler := NewHandler(auth, logicv1.NewAdminService(client), logicv1.NewDeveloperService(client))

	gin.SetMode(gin.TestMode)
	f.router = gin.New()
	handler.RegisterRoutes(f.router.Group("/api/v1"))
	return f
}

// stubMe makes the upstream accept the stored token and return user.
func (f *fixture) stubMe(user *domain.User) {
	f.upstream["GET /auth/me"] = func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.AuthEnvelope{Success: true, User: user})
	}
}

func (f *fixture) do(method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func TestGatewayLoginPersistsSession(t *testing.T) {
	f := newFixture(t)
	f.upstream["POST /auth/login"] = func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.AuthEnvelope{
			Success: true, Token: "tok-1",
			User: &domain.User{ID: "u1", Username: "maya", Role: domain.RoleDeveloper},
		})
	}

	body, _ := json.Marshal(map[string]string{"email": "maya@example.com", "password": "pw"})
	w := f.do(http.MethodPost, "/api/v1/auth/login", body, "application/json")

	require.Equal(t, http.StatusOK, w.Code)
	sess, _ := f.store.Get()
	assert.Equal(t, "tok-1", sess.Token)
}

func TestGatewayLoginRefused(t *testing.T) {
	f := newFixture(t)
	f.upstream["POST /auth/login"] = func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.AuthEnvelope{Success: false, Error: "wrong password"})
	}

	body, _ := json.Marshal(map[string]string{"email": "maya@example.com", "password": "bad"})
	w := f.do(http.MethodPost, "/api/v1/auth/login", body, "application/json")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGatewayAdminPageWithoutTokenRedirects(t *testing.T) {
	f := newFixture(t)
	// No upstream stubs: nothing may be called.

	w := f.do(http.MethodGet, "/api/v1/admin/stats", nil, "")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, middleware.LoginPath, w.Header().Get("Location"))
}

func TestGatewayAdminPageWithDeveloperRoleUnauthorized(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetAuth("tok", &domain.User{ID: "d1", Role: domain.RoleDeveloper}))
	f.stubMe(&domain.User{ID: "d1", Role: domain.RoleDeveloper})

	w := f.do(http.MethodGet, "/api/v1/admin/stats", nil, "")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, middleware.UnauthorizedPath, w.Header().Get("Location"))
}

func TestGatewayAdminStats(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetAuth("tok", &domain.User{ID: "a1", Role: domain.RoleAdmin}))
	f.stubMe(&domain.User{ID: "a1", Role: domain.RoleAdmin})
	f.upstream["GET /admin/stats"] = func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"data":{"totalUsers":42}}`))
	}

	w := f.do(http.MethodGet, "/api/v1/admin/stats", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalUsers":42`)
}

func TestGatewayDeveloperGroupAdmitsAdmin(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetAuth("tok", &domain.User{ID: "a1", Role: domain.RoleAdmin}))
	f.stubMe(&domain.User{ID: "a1", Role: domain.RoleAdmin})
	f.upstream["GET /apps/developer/my-apps"] = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}

	w := f.do(http.MethodGet, "/api/v1/developer/apps", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGatewayUpdateAppStatusInvalidTransition(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetAuth("tok", &domain.User{ID: "a1", Role: domain.RoleAdmin}))
	f.stubMe(&domain.User{ID: "a1", Role: domain.RoleAdmin})
	// No PUT stub: the transition check must fire before any upstream call.

	body, _ := json.Marshal(map[string]string{"current": "approved", "status": "rejected"})
	w := f.do(http.MethodPut, "/api/v1/admin/apps/a1/status", body, "application/json")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGatewayPublishAppForwardsMultipart(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetAuth("tok", &domain.User{ID: "d1", Role: domain.RoleDeveloper}))
	f.stubMe(&domain.User{ID: "d1", Role: domain.RoleDeveloper})
	f.upstream["POST /apps"] = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Reader", r.FormValue("name"))
		_, header, err := r.FormFile("appFile")
		require.NoError(t, err)
		assert.Equal(t, "reader.brr", header.Filename)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"_id":"a1","status":"pending"}}`))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("name", "Reader")
	mw.WriteField("packageId", "com.barruu.reader")
	part, _ := mw.CreateFormFile("appFile", "reader.brr")
	part.Write([]byte("bytes"))
	mw.Close()

	w := f.do(http.MethodPost, "/api/v1/developer/apps", buf.Bytes(), mw.FormDataContentType())
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGatewayLogout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetAuth("tok", &domain.User{ID: "u1"}))

	w := f.do(http.MethodPost, "/api/v1/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	sess, _ := f.store.Get()
	assert.False(t, sess.Authenticated())
}

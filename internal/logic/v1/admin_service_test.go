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

func newAdminFixture(t *testing.T, handler http.Handler) *AdminService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	store := session.NewMemStore()
	require.NoError(t, store.SetAuth("admin-token", &domain.User{ID: "a1", Role: domain.RoleAdmin}))
	return NewAdminService(api.New(api.Config{BaseURL: server.URL, Store: store}))
}

func TestStats(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/stats", r.URL.Path)
		require.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"data":{"totalUsers":100,"totalDevelopers":12,"totalApps":34,"pendingApps":5,"totalDownloads":9000}}`))
	}))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.TotalUsers)
	assert.Equal(t, int64(5), stats.PendingApps)
}

func TestUsersQueryParams(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "developer", q.Get("role"))
		assert.Equal(t, "maya", q.Get("search"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "50", q.Get("limit"))
		json.NewEncoder(w).Encode(domain.Page[domain.User]{Success: true, Data: []domain.User{}})
	}))

	_, err := svc.Users(context.Background(), UserListOptions{
		Role: domain.RoleDeveloper, Search: "maya", Page: 2, Limit: 50,
	})
	require.NoError(t, err)
}

func TestUsersDefaults(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.False(t, q.Has("role"))
		assert.False(t, q.Has("search"))
		json.NewEncoder(w).Encode(domain.Page[domain.User]{Success: true})
	}))

	_, err := svc.Users(context.Background(), UserListOptions{})
	require.NoError(t, err)
}

func TestAppsPaginationPassthrough(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		w.Write([]byte(`{"success":true,"data":[
			{"_id":"a1","name":"One","status":"pending"},
			{"_id":"a2","name":"Two","status":"pending"},
			{"_id":"a3","name":"Three","status":"pending"}],
			"pagination":{"page":1,"limit":20,"total":3,"pages":1}}`))
	}))

	page, err := svc.Apps(context.Background(), AppListOptions{Status: domain.AppPending})
	require.NoError(t, err)

	// Exactly what the server sent, no client-side filtering.
	require.Len(t, page.Data, 3)
	assert.Equal(t, "a1", page.Data[0].ID)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
}

func TestUpdateAppStatusAllowed(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/admin/apps/a1/status", r.URL.Path)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		require.Equal(t, "approved", body["status"])
		w.Write([]byte(`{"success":true,"data":{"_id":"a1","status":"approved"}}`))
	}))

	app, err := svc.UpdateAppStatus(context.Background(), "a1", domain.AppPending, domain.AppApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.AppApproved, app.Status)
}

func TestUpdateAppStatusInvalidTransitionSkipsAPI(t *testing.T) {
	var calls atomic.Int32
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	// Rejecting an approved app is not offered by the moderation flow.
	_, err := svc.UpdateAppStatus(context.Background(), "a1", domain.AppApproved, domain.AppRejected)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, calls.Load())

	// Neither is resurrecting a rejected one.
	_, err = svc.UpdateAppStatus(context.Background(), "a2", domain.AppRejected, domain.AppApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, calls.Load())
}

func TestVerifyDeveloper(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/users/u9/verify", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)
		w.Write([]byte(`{"success":true,"data":{"_id":"u9","username":"dev","role":"developer","developerProfile":{"verified":true}}}`))
	}))

	user, err := svc.VerifyDeveloper(context.Background(), "u9")
	require.NoError(t, err)
	assert.True(t, user.DeveloperProfile.Verified)
}

func TestDeleteUser(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/admin/users/u9", r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	}))

	require.NoError(t, svc.DeleteUser(context.Background(), "u9"))
}

func TestDeleteUserRejected(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"cannot delete an admin"}`))
	}))

	err := svc.DeleteUser(context.Background(), "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "cannot delete an admin")
}

func TestToggleFeature(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/apps/a1/feature", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"_id":"a1","featured":true,"status":"approved"}}`))
	}))

	app, err := svc.ToggleFeature(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, app.Featured)
}

func TestRecentActivity(t *testing.T) {
	svc := newAdminFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"success":true,"data":[{"_id":"e1","type":"app_submitted","description":"One submitted"}]}`))
	}))

	feed, err := svc.RecentActivity(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "app_submitted", feed[0].Type)
}

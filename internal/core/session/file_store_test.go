package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barruu/console/internal/core/domain"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := tempStore(t)

	user := &domain.User{
		ID:       "u1",
		Username: "maya",
		Email:    "maya@example.com",
		Role:     domain.RoleDeveloper,
		DeveloperProfile: &domain.DeveloperProfile{
			Website:  "https://maya.dev",
			Bio:      "apps",
			Verified: true,
		},
	}
	require.NoError(t, store.SetAuth("tok-abc", user))

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", sess.Token)
	assert.Equal(t, user, sess.User)
	assert.True(t, sess.Authenticated())
}

func TestFileStoreEmpty(t *testing.T) {
	store := tempStore(t)

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
	assert.Nil(t, sess.User)
	assert.False(t, sess.Authenticated())
}

func TestFileStoreSetUserPreservesToken(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.SetAuth("tok-1", &domain.User{ID: "u1", Role: domain.RoleUser}))

	require.NoError(t, store.SetUser(&domain.User{ID: "u1", Role: domain.RoleDeveloper}))

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, domain.RoleDeveloper, sess.User.Role)
}

func TestFileStoreClearIdempotent(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.SetAuth("tok-1", &domain.User{ID: "u1"}))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	sess, err := store.Get()
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
}

func TestFileStoreCorruptedFileReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store := NewFileStore(path)

	sess, err := store.Get()
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())

	// The next write heals the file.
	require.NoError(t, store.SetAuth("tok-2", &domain.User{ID: "u2"}))
	sess, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok-2", sess.Token)
}

func TestFileStorePermissions(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.SetAuth("tok-1", nil))

	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()

	user := &domain.User{ID: "u1", Role: domain.RoleAdmin}
	require.NoError(t, store.SetAuth("tok", user))

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, user, sess.User)

	require.NoError(t, store.SetUser(&domain.User{ID: "u2"}))
	sess, _ = store.Get()
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "u2", sess.User.ID)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	sess, _ = store.Get()
	assert.False(t, sess.Authenticated())
}

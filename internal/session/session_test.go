package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

func TestSessionLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	sess := New(store)
	require.NoError(t, sess.Restore())
	assert.False(t, sess.Authenticated())

	require.NoError(t, sess.SetToken("tok-123"))
	require.NoError(t, sess.SetUser(&models.User{ID: "u1", Email: "staff@campus.edu", Role: models.RoleStaff}))
	assert.True(t, sess.Authenticated())

	// A fresh session restores the persisted token.
	restored := New(NewFileStore(path))
	require.NoError(t, restored.Restore())
	assert.Equal(t, "tok-123", restored.Token())
	require.NotNil(t, restored.User())
	assert.Equal(t, "u1", restored.User().ID)

	require.NoError(t, restored.Clear())
	assert.False(t, restored.Authenticated())

	again := New(NewFileStore(path))
	require.NoError(t, again.Restore())
	assert.False(t, again.Authenticated())
}

func TestSessionWithoutStore(t *testing.T) {
	sess := New(nil)
	require.NoError(t, sess.Restore())
	require.NoError(t, sess.SetToken("ephemeral"))
	assert.Equal(t, "ephemeral", sess.Token())
	require.NoError(t, sess.Clear())
	assert.Empty(t, sess.Token())
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)
	require.NoError(t, store.Clear())
}

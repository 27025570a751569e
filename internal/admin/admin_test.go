package admin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"restou/internal/database"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "restou.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	repo := NewRepository(db.SQL)
	repo.cost = bcrypt.MinCost
	return repo
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	created, err := repo.Create(ctx, "chef", "s3cret", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "chef", created.Username)

	t.Run("ValidPassword", func(t *testing.T) {
		a, err := repo.Authenticate(ctx, "chef", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, created.ID, a.ID)
		assert.Equal(t, RoleAdmin, a.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := repo.Authenticate(ctx, "chef", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := repo.Authenticate(ctx, "ghost", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("PasswordIsHashed", func(t *testing.T) {
		var stored string
		require.NoError(t, repo.db.QueryRow(`SELECT password FROM admins WHERE id = ?`, created.ID).Scan(&stored))
		assert.NotEqual(t, "s3cret", stored)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := repo.Create(ctx, "chef", "other", RoleSuperadmin)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestCreate_InvalidInput(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "", "pw", RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = repo.Create(ctx, "x", "pw", Role("diner"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	a, err := repo.Create(ctx, "alice", "first", RoleAdmin)
	require.NoError(t, err)

	t.Run("KeepsPasswordWhenEmpty", func(t *testing.T) {
		_, err := repo.Update(ctx, a.ID, "alice2", "", RoleSuperadmin)
		require.NoError(t, err)

		got, err := repo.Authenticate(ctx, "alice2", "first")
		require.NoError(t, err)
		assert.Equal(t, RoleSuperadmin, got.Role)
	})

	t.Run("ChangesPassword", func(t *testing.T) {
		_, err := repo.Update(ctx, a.ID, "alice2", "second", RoleSuperadmin)
		require.NoError(t, err)

		_, err = repo.Authenticate(ctx, "alice2", "first")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = repo.Authenticate(ctx, "alice2", "second")
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.Update(ctx, 999, "bob", "", RoleAdmin)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	_, err := repo.Create(ctx, "zoe", "pw", RoleAdmin)
	require.NoError(t, err)
	b, err := repo.Create(ctx, "bruno", "pw", RoleSuperadmin)
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bruno", list[0].Username)
	assert.Equal(t, "zoe", list[1].Username)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrNotFound)

	_, err = repo.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

func TestAdminAccountsAreProtected(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewUserService(store, newFakeSessions(), quietLogger())
	admin := store.addUser("admin@x.com", entity.RoleAdmin)
	dual := store.addUser("dual@x.com", entity.RoleUser, entity.RoleAdmin)

	for _, u := range []entity.User{admin, dual} {
		_, err := svc.UpdateRole(ctx, u.ID, RoleInput{Role: "user"})
		assert.ErrorIs(t, err, ErrAdminProtected)
		assert.Equal(t, KindForbidden, KindOf(err))

		err = svc.DeleteUser(ctx, u.ID)
		assert.ErrorIs(t, err, ErrAdminProtected)
		assert.Contains(t, store.db.users, u.ID)
	}
	roles, _ := store.Repos().Roles.ListForUser(ctx, dual.ID)
	assert.True(t, roles.Has(entity.RoleAdmin))
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sessions := newFakeSessions()
	svc := NewUserService(store, sessions, quietLogger())
	u := store.addUser("u@x.com", entity.RoleUser)
	require.NoError(t, sessions.Save(ctx, repo.Session{UserID: u.ID}, time.Hour))

	_, err := svc.UpdateRole(ctx, u.ID, RoleInput{Role: "superuser"})
	assert.Equal(t, KindValidation, KindOf(err))

	updated, err := svc.UpdateRole(ctx, u.ID, RoleInput{Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSet{entity.RoleAdmin}, updated.Roles)
	_, err = sessions.Get(ctx, u.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound, "role change ends the session")

	_, err = svc.UpdateRole(ctx, "missing", RoleInput{Role: "user"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewUserService(store, newFakeSessions(), quietLogger())
	likes := NewLikeService(store, quietLogger())
	library := NewLibraryService(store, quietLogger())
	song := store.addSong("S", store.addArtist("A"), store.addGenre("G"))
	u := store.addUser("u@x.com", entity.RoleUser)

	_, err := likes.ToggleLike(ctx, u.ID, song.ID)
	require.NoError(t, err)
	_, err = library.RecordPlay(ctx, u.ID, song.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, u.ID))
	assert.Empty(t, store.db.users)
	assert.Empty(t, store.db.playlists)
	assert.Empty(t, store.db.playlistSongs)
	assert.Empty(t, store.db.likes)
	assert.Empty(t, store.db.history)

	assert.ErrorIs(t, svc.DeleteUser(ctx, u.ID), ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewUserService(store, nil, quietLogger())
	u := store.addUser("u@x.com", entity.RoleUser)

	_, err := svc.UpdateProfile(ctx, u.ID, ProfileInput{Name: "   "})
	assert.Equal(t, KindValidation, KindOf(err))

	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileInput{Name: " New Name "})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "New Name", store.db.users[u.ID].Name)

	users, total, err := svc.ListUsers(ctx, repo.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.True(t, users[0].Roles.Has(entity.RoleUser))
}

package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

type catalogFixture struct {
	store   *memStore
	objects *fakeObjects
	index   *fakeIndex
	svc     *CatalogService
	artist  entity.Artist
	genre   entity.Genre
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	f := &catalogFixture{store: newMemStore(), objects: newFakeObjects(), index: newFakeIndex()}
	f.svc = NewCatalogService(f.store, f.objects, f.index, quietLogger())
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	f.artist = f.store.addArtist("Artist")
	f.genre = f.store.addGenre("Hip Hop")
	return f
}

func audioUpload(name string) *Upload {
	return &Upload{Filename: name, ContentType: "audio/mpeg", Reader: strings.NewReader("ID3")}
}

func imageUpload(name string) *Upload {
	return &Upload{Filename: name, ContentType: "image/png", Reader: strings.NewReader("PNG")}
}

func TestCreateSong(t *testing.T) {
	f := newCatalogFixture(t)
	song, err := f.svc.CreateSong(context.Background(), SongInput{
		Title: " Track ", ArtistID: f.artist.ID, GenreID: f.genre.ID, Duration: 180,
	}, audioUpload("track.mp3"), imageUpload("cover.png"))
	require.NoError(t, err)

	assert.Equal(t, "Track", song.Title)
	assert.Equal(t, "Artist", song.ArtistName)
	assert.Equal(t, "songs/hip-hop/1700000000000-track.mp3", song.AudioKey)
	assert.Equal(t, "images/hip-hop/1700000000000-cover.png", song.ImageKey)
	assert.Len(t, f.objects.objects, 2)
	assert.Contains(t, f.index.songs, song.ID)
	assert.Equal(t, "https://cdn.test/"+song.AudioKey, f.svc.URL(song.AudioKey))
}

func TestCreateSongRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	valid := SongInput{Title: "T", ArtistID: f.artist.ID, GenreID: f.genre.ID}

	_, err := f.svc.CreateSong(ctx, valid, nil, nil)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.CreateSong(ctx, valid, imageUpload("x.png"), nil)
	assert.Equal(t, KindValidation, KindOf(err))

	missing := valid
	missing.GenreID = "6a2f41a3-c54c-4ce8-82d2-0324e1c32e22"
	_, err = f.svc.CreateSong(ctx, missing, audioUpload("a.mp3"), nil)
	assert.ErrorIs(t, err, ErrGenreNotFound)
	assert.Empty(t, f.objects.objects)
}

func TestCreateSongRemovesBlobsWhenRowWriteFails(t *testing.T) {
	f := newCatalogFixture(t)
	f.store.failOn["songs.Create"] = true

	_, err := f.svc.CreateSong(context.Background(), SongInput{
		Title: "T", ArtistID: f.artist.ID, GenreID: f.genre.ID,
	}, audioUpload("a.mp3"), imageUpload("c.png"))
	assert.Equal(t, KindSystem, KindOf(err))
	assert.Empty(t, f.objects.objects)
	assert.Empty(t, f.store.db.songs)
}

func TestCreateSongWithoutStorage(t *testing.T) {
	f := newCatalogFixture(t)
	f.svc.Objects = nil
	_, err := f.svc.CreateSong(context.Background(), SongInput{
		Title: "T", ArtistID: f.artist.ID, GenreID: f.genre.ID,
	}, audioUpload("a.mp3"), nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestUpdateSongReplacesFiles(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	song, err := f.svc.CreateSong(ctx, SongInput{Title: "T", ArtistID: f.artist.ID, GenreID: f.genre.ID}, audioUpload("a.mp3"), nil)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.UnixMilli(1700000009999) }
	title := "Renamed"
	updated, err := f.svc.UpdateSong(ctx, song.ID, SongUpdate{Title: &title}, audioUpload("b.mp3"), nil)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "songs/hip-hop/1700000009999-b.mp3", updated.AudioKey)
	assert.NotContains(t, f.objects.objects, song.AudioKey)
	assert.Contains(t, f.objects.objects, updated.AudioKey)
	assert.Equal(t, "Renamed", f.index.songs[song.ID].Title)

	f.store.failOn["songs.Update"] = true
	_, err = f.svc.UpdateSong(ctx, song.ID, SongUpdate{}, audioUpload("c.mp3"), nil)
	require.Error(t, err)
	assert.Len(t, f.objects.objects, 1, "new blob removed, old blob kept")
	assert.Contains(t, f.objects.objects, updated.AudioKey)
}

func TestDeleteSongKeepsLikedInvariant(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	likes := NewLikeService(f.store, quietLogger())
	u := f.store.addUser("u@x.com", entity.RoleUser)
	s1, err := f.svc.CreateSong(ctx, SongInput{Title: "One", ArtistID: f.artist.ID, GenreID: f.genre.ID}, audioUpload("1.mp3"), nil)
	require.NoError(t, err)
	s2 := f.store.addSong("Two", f.artist, f.genre)

	_, err = likes.ToggleLike(ctx, u.ID, s1.ID)
	require.NoError(t, err)
	_, err = likes.ToggleLike(ctx, u.ID, s2.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSong(ctx, s1.ID))
	assertLikedInvariant(t, f.store, u.ID)
	assert.NotContains(t, f.index.songs, s1.ID)
	assert.Empty(t, f.objects.objects)

	require.NoError(t, f.svc.DeleteSong(ctx, s2.ID))
	assertLikedInvariant(t, f.store, u.ID)
	_, ok := f.store.likedPlaylist(u.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, f.svc.DeleteSong(ctx, s2.ID), ErrSongNotFound)
}

func TestDeleteArtistCascades(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	likes := NewLikeService(f.store, quietLogger())
	library := NewLibraryService(f.store, quietLogger())
	u := f.store.addUser("u@x.com", entity.RoleUser)
	song := f.store.addSong("S", f.artist, f.genre)
	other := f.store.addSong("Other", f.store.addArtist("Other"), f.genre)

	_, err := likes.ToggleLike(ctx, u.ID, song.ID)
	require.NoError(t, err)
	_, err = library.ToggleFollow(ctx, u.ID, f.artist.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteArtist(ctx, f.artist.ID))
	assert.NotContains(t, f.store.db.songs, song.ID)
	assert.Contains(t, f.store.db.songs, other.ID)
	assert.Empty(t, f.store.db.follows)
	assertLikedInvariant(t, f.store, u.ID)

	_, err = f.svc.GetArtist(ctx, f.artist.ID)
	assert.ErrorIs(t, err, ErrArtistNotFound)
}

func TestArtistCRUD(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	a, err := f.svc.CreateArtist(ctx, ArtistInput{Name: "New", Bio: "bio"}, imageUpload("face.png"))
	require.NoError(t, err)
	assert.Equal(t, "images/artists/1700000000000-face.png", a.ImageKey)
	assert.Contains(t, f.index.artists, a.ID)

	name := "Renamed"
	a, err = f.svc.UpdateArtist(ctx, a.ID, ArtistUpdate{Name: &name}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", a.Name)
	assert.Equal(t, "bio", a.Bio)

	f.store.addSong("Hit", *a, f.genre)
	detail, err := f.svc.GetArtist(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Songs, 1)

	artists, total, err := f.svc.ListArtists(ctx, repo.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, artists, 2)
}

func TestRenameArtistReindexesSongs(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	first := f.store.addSong("One", f.artist, f.genre)
	second := f.store.addSong("Two", f.artist, f.genre)
	other := f.store.addSong("Elsewhere", f.store.addArtist("Other"), f.genre)

	bio := "new bio"
	_, err := f.svc.UpdateArtist(ctx, f.artist.ID, ArtistUpdate{Bio: &bio}, nil)
	require.NoError(t, err)
	assert.Empty(t, f.index.songs)

	name := "Renamed"
	_, err = f.svc.UpdateArtist(ctx, f.artist.ID, ArtistUpdate{Name: &name}, nil)
	require.NoError(t, err)
	require.Len(t, f.index.songs, 2)
	assert.Equal(t, "Renamed", f.index.songs[first.ID].ArtistName)
	assert.Equal(t, "Renamed", f.index.songs[second.ID].ArtistName)
	assert.NotContains(t, f.index.songs, other.ID)
}

func TestGenreLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	g, err := f.svc.CreateGenre(ctx, GenreInput{Name: "Jazz"})
	require.NoError(t, err)
	_, err = f.svc.CreateGenre(ctx, GenreInput{Name: "jazz"})
	assert.ErrorIs(t, err, ErrGenreExists)
	_, err = f.svc.CreateGenre(ctx, GenreInput{Name: " "})
	assert.Equal(t, KindValidation, KindOf(err))

	g, err = f.svc.UpdateGenre(ctx, g.ID, GenreInput{Name: "Free Jazz"})
	require.NoError(t, err)
	assert.Equal(t, "Free Jazz", g.Name)

	f.store.addSong("S", f.artist, *g)
	assert.ErrorIs(t, f.svc.DeleteGenre(ctx, g.ID), ErrGenreInUse)

	empty, err := f.svc.CreateGenre(ctx, GenreInput{Name: "Ambient"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteGenre(ctx, empty.ID))
	assert.ErrorIs(t, f.svc.DeleteGenre(ctx, empty.ID), ErrGenreNotFound)

	genres, err := f.svc.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 2)
}

func TestListSongsFilters(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	rock := f.store.addGenre("Rock")
	f.store.addSong("A", f.artist, f.genre)
	f.store.addSong("B", f.artist, rock)
	f.store.addSong("C", f.artist, rock)

	songs, total, err := f.svc.ListSongs(ctx, repo.SongFilter{GenreID: rock.ID, Page: repo.Page{Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, songs, 1)
	assert.Equal(t, "C", songs[0].Title)
}

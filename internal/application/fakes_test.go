package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

var errInjected = errors.New("injected failure")

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memDB is the state behind memStore. Every field is copied by clone so a
// transaction can be rolled back by restoring the snapshot.
type memDB struct {
	users         map[string]entity.User
	roles         map[string]entity.Role
	userRoles     map[string][]string
	genres        map[string]entity.Genre
	artists       map[string]entity.Artist
	songs         map[string]entity.Song
	playlists     map[string]entity.Playlist
	playlistSongs []entity.PlaylistSong
	likes         []entity.LikeSong
	history       []entity.History
	follows       []entity.FollowArtist
	seq           int
}

func (d *memDB) clone() *memDB {
	c := *d
	c.users = maps.Clone(d.users)
	c.roles = maps.Clone(d.roles)
	c.userRoles = make(map[string][]string, len(d.userRoles))
	for k, v := range d.userRoles {
		c.userRoles[k] = slices.Clone(v)
	}
	c.genres = maps.Clone(d.genres)
	c.artists = maps.Clone(d.artists)
	c.songs = maps.Clone(d.songs)
	c.playlists = maps.Clone(d.playlists)
	c.playlistSongs = slices.Clone(d.playlistSongs)
	c.likes = slices.Clone(d.likes)
	c.history = slices.Clone(d.history)
	c.follows = slices.Clone(d.follows)
	return &c
}

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// tick returns strictly increasing timestamps so ordering is deterministic.
func (d *memDB) tick() time.Time {
	d.seq++
	return epoch.Add(time.Duration(d.seq) * time.Millisecond)
}

// memStore is an in-memory repo.Store. Operations named in failOn return
// errInjected, which lets tests break a transaction at a precise step.
type memStore struct {
	db     *memDB
	failOn map[string]bool
	txs    int
}

func newMemStore() *memStore {
	s := &memStore{
		db: &memDB{
			users:     map[string]entity.User{},
			roles:     map[string]entity.Role{},
			userRoles: map[string][]string{},
			genres:    map[string]entity.Genre{},
			artists:   map[string]entity.Artist{},
			songs:     map[string]entity.Song{},
			playlists: map[string]entity.Playlist{},
		},
		failOn: map[string]bool{},
	}
	for _, n := range []entity.RoleName{entity.RoleAdmin, entity.RoleUser} {
		id := uuid.NewString()
		s.db.roles[id] = entity.Role{ID: id, Name: n}
	}
	return s
}

func (s *memStore) hook(op string) error {
	if s.failOn[op] {
		return fmt.Errorf("%s: %w", op, errInjected)
	}
	return nil
}

func (s *memStore) Repos() repo.Repositories {
	return repo.Repositories{
		Users:     memUsers{s},
		Roles:     memRoles{s},
		Songs:     memSongs{s},
		Artists:   memArtists{s},
		Genres:    memGenres{s},
		Playlists: memPlaylists{s},
		Likes:     memLikes{s},
		History:   memHistory{s},
		Follows:   memFollows{s},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.Repositories) error) error {
	s.txs++
	snapshot := s.db.clone()
	if err := fn(ctx, s.Repos()); err != nil {
		s.db = snapshot
		return err
	}
	return nil
}

// seeding helpers

func (s *memStore) addGenre(name string) entity.Genre {
	g := entity.Genre{ID: uuid.NewString(), Name: name, CreatedAt: s.db.tick()}
	s.db.genres[g.ID] = g
	return g
}

func (s *memStore) addArtist(name string) entity.Artist {
	a := entity.Artist{ID: uuid.NewString(), Name: name, CreatedAt: s.db.tick()}
	s.db.artists[a.ID] = a
	return a
}

func (s *memStore) addSong(title string, artist entity.Artist, genre entity.Genre) entity.Song {
	song := entity.Song{ID: uuid.NewString(), Title: title, ArtistID: artist.ID, GenreID: genre.ID, AudioKey: "songs/" + title, CreatedAt: s.db.tick()}
	s.db.songs[song.ID] = song
	return song
}

func (s *memStore) addUser(email string, roles ...entity.RoleName) entity.User {
	u := entity.User{ID: uuid.NewString(), Email: email, Name: email, IsVerified: true, CreatedAt: s.db.tick()}
	s.db.users[u.ID] = u
	for _, r := range roles {
		role, _ := memRoles{s}.GetByName(context.Background(), r)
		s.db.userRoles[u.ID] = append(s.db.userRoles[u.ID], role.ID)
	}
	return u
}

func (s *memStore) likedPlaylist(userID string) (entity.Playlist, bool) {
	for _, p := range s.db.playlists {
		if p.UserID == userID && p.Title == entity.LikedSongsTitle {
			return p, true
		}
	}
	return entity.Playlist{}, false
}

func (s *memStore) playlistSongIDs(playlistID string) []string {
	var ids []string
	for _, ps := range s.db.playlistSongs {
		if ps.PlaylistID == playlistID {
			ids = append(ids, ps.SongID)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s *memStore) likedSongIDs(userID string) []string {
	var ids []string
	for _, l := range s.db.likes {
		if l.UserID == userID {
			ids = append(ids, l.SongID)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s *memStore) songView(song entity.Song) entity.Song {
	song.ArtistName = s.db.artists[song.ArtistID].Name
	song.GenreName = s.db.genres[song.GenreID].Name
	return song
}

// users

type memUsers struct{ s *memStore }

func (m memUsers) load(u entity.User) *entity.User {
	var names []string
	for _, id := range m.s.db.userRoles[u.ID] {
		names = append(names, string(m.s.db.roles[id].Name))
	}
	u.Roles = entity.NewRoleSet(names...)
	return &u
}

func (m memUsers) find(match func(entity.User) bool) (*entity.User, error) {
	for _, u := range m.s.db.users {
		if match(u) {
			return m.load(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m memUsers) Create(_ context.Context, u *entity.User) error {
	if err := m.s.hook("users.Create"); err != nil {
		return err
	}
	if _, err := m.find(func(x entity.User) bool { return x.Email == u.Email }); err == nil {
		return repo.ErrDuplicate
	}
	u.ID = uuid.NewString()
	u.CreatedAt = m.s.db.tick()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	stored.Roles = nil
	m.s.db.users[u.ID] = stored
	return nil
}

func (m memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m.s.db.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return m.load(u), nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return u.Email == email })
}

func (m memUsers) GetByVerificationToken(_ context.Context, token string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return token != "" && u.VerificationToken == token })
}

func (m memUsers) GetByResetToken(_ context.Context, token string) (*entity.User, error) {
	return m.find(func(u entity.User) bool { return token != "" && u.ResetToken == token })
}

func (m memUsers) Update(_ context.Context, u *entity.User) error {
	if err := m.s.hook("users.Update"); err != nil {
		return err
	}
	if _, ok := m.s.db.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	u.UpdatedAt = m.s.db.tick()
	stored := *u
	stored.Roles = nil
	m.s.db.users[u.ID] = stored
	return nil
}

func (m memUsers) Delete(_ context.Context, id string) error {
	if _, ok := m.s.db.users[id]; !ok {
		return repo.ErrNotFound
	}
	db := m.s.db
	delete(db.users, id)
	delete(db.userRoles, id)
	for pid, p := range db.playlists {
		if p.UserID == id {
			memPlaylists{m.s}.Delete(context.Background(), pid)
		}
	}
	db.likes = slices.DeleteFunc(db.likes, func(l entity.LikeSong) bool { return l.UserID == id })
	db.history = slices.DeleteFunc(db.history, func(h entity.History) bool { return h.UserID == id })
	db.follows = slices.DeleteFunc(db.follows, func(f entity.FollowArtist) bool { return f.UserID == id })
	return nil
}

func (m memUsers) List(_ context.Context, page repo.Page) ([]entity.User, int, error) {
	all := slices.Collect(maps.Values(m.s.db.users))
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	var out []entity.User
	for _, u := range window(all, page) {
		out = append(out, *m.load(u))
	}
	return out, len(all), nil
}

func window[T any](all []T, page repo.Page) []T {
	page = page.Normalize()
	if page.Offset >= len(all) {
		return nil
	}
	return all[page.Offset:min(len(all), page.Offset+page.Limit)]
}

// roles

type memRoles struct{ s *memStore }

func (m memRoles) GetByName(_ context.Context, name entity.RoleName) (*entity.Role, error) {
	for _, r := range m.s.db.roles {
		if r.Name == name {
			return &r, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m memRoles) AssignToUser(_ context.Context, userID, roleID string) error {
	if err := m.s.hook("roles.AssignToUser"); err != nil {
		return err
	}
	if !slices.Contains(m.s.db.userRoles[userID], roleID) {
		m.s.db.userRoles[userID] = append(m.s.db.userRoles[userID], roleID)
	}
	return nil
}

func (m memRoles) SetUserRole(_ context.Context, userID, roleID string) error {
	m.s.db.userRoles[userID] = []string{roleID}
	return nil
}

func (m memRoles) ListForUser(_ context.Context, userID string) (entity.RoleSet, error) {
	var names []string
	for _, id := range m.s.db.userRoles[userID] {
		names = append(names, string(m.s.db.roles[id].Name))
	}
	return entity.NewRoleSet(names...), nil
}

// songs

type memSongs struct{ s *memStore }

func (m memSongs) Create(_ context.Context, song *entity.Song) error {
	if err := m.s.hook("songs.Create"); err != nil {
		return err
	}
	song.ID = uuid.NewString()
	song.CreatedAt = m.s.db.tick()
	song.UpdatedAt = song.CreatedAt
	m.s.db.songs[song.ID] = *song
	return nil
}

func (m memSongs) GetByID(_ context.Context, id string) (*entity.Song, error) {
	song, ok := m.s.db.songs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	v := m.s.songView(song)
	return &v, nil
}

func (m memSongs) Update(_ context.Context, song *entity.Song) error {
	if err := m.s.hook("songs.Update"); err != nil {
		return err
	}
	if _, ok := m.s.db.songs[song.ID]; !ok {
		return repo.ErrNotFound
	}
	song.UpdatedAt = m.s.db.tick()
	m.s.db.songs[song.ID] = *song
	return nil
}

func (m memSongs) Delete(_ context.Context, id string) error {
	if err := m.s.hook("songs.Delete"); err != nil {
		return err
	}
	if _, ok := m.s.db.songs[id]; !ok {
		return repo.ErrNotFound
	}
	db := m.s.db
	delete(db.songs, id)
	db.likes = slices.DeleteFunc(db.likes, func(l entity.LikeSong) bool { return l.SongID == id })
	db.playlistSongs = slices.DeleteFunc(db.playlistSongs, func(p entity.PlaylistSong) bool { return p.SongID == id })
	db.history = slices.DeleteFunc(db.history, func(h entity.History) bool { return h.SongID == id })
	return nil
}

func (m memSongs) sorted(match func(entity.Song) bool) []entity.Song {
	var out []entity.Song
	for _, song := range m.s.db.songs {
		if match(song) {
			out = append(out, m.s.songView(song))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m memSongs) List(_ context.Context, f repo.SongFilter) ([]entity.Song, int, error) {
	all := m.sorted(func(song entity.Song) bool {
		return (f.GenreID == "" || song.GenreID == f.GenreID) && (f.ArtistID == "" || song.ArtistID == f.ArtistID)
	})
	return window(all, f.Page), len(all), nil
}

func (m memSongs) SearchByPrefix(_ context.Context, prefix string, limit int) ([]entity.Song, error) {
	all := m.sorted(func(song entity.Song) bool {
		return strings.HasPrefix(strings.ToLower(song.Title), strings.ToLower(prefix))
	})
	return all[:min(limit, len(all))], nil
}

// artists

type memArtists struct{ s *memStore }

func (m memArtists) Create(_ context.Context, a *entity.Artist) error {
	if err := m.s.hook("artists.Create"); err != nil {
		return err
	}
	a.ID = uuid.NewString()
	a.CreatedAt = m.s.db.tick()
	m.s.db.artists[a.ID] = *a
	return nil
}

func (m memArtists) GetByID(_ context.Context, id string) (*entity.Artist, error) {
	a, ok := m.s.db.artists[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for _, f := range m.s.db.follows {
		if f.ArtistID == id {
			a.Followers++
		}
	}
	return &a, nil
}

func (m memArtists) Update(_ context.Context, a *entity.Artist) error {
	if _, ok := m.s.db.artists[a.ID]; !ok {
		return repo.ErrNotFound
	}
	m.s.db.artists[a.ID] = *a
	return nil
}

func (m memArtists) Delete(_ context.Context, id string) error {
	if _, ok := m.s.db.artists[id]; !ok {
		return repo.ErrNotFound
	}
	for sid, song := range m.s.db.songs {
		if song.ArtistID == id {
			memSongs{m.s}.Delete(context.Background(), sid)
		}
	}
	delete(m.s.db.artists, id)
	m.s.db.follows = slices.DeleteFunc(m.s.db.follows, func(f entity.FollowArtist) bool { return f.ArtistID == id })
	return nil
}

func (m memArtists) sorted(match func(entity.Artist) bool) []entity.Artist {
	var out []entity.Artist
	for _, a := range m.s.db.artists {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m memArtists) List(_ context.Context, page repo.Page) ([]entity.Artist, int, error) {
	all := m.sorted(func(entity.Artist) bool { return true })
	return window(all, page), len(all), nil
}

func (m memArtists) SearchByPrefix(_ context.Context, prefix string, limit int) ([]entity.Artist, error) {
	all := m.sorted(func(a entity.Artist) bool {
		return strings.HasPrefix(strings.ToLower(a.Name), strings.ToLower(prefix))
	})
	return all[:min(limit, len(all))], nil
}

// genres

type memGenres struct{ s *memStore }

func (m memGenres) Create(_ context.Context, g *entity.Genre) error {
	for _, x := range m.s.db.genres {
		if strings.EqualFold(x.Name, g.Name) {
			return repo.ErrDuplicate
		}
	}
	g.ID = uuid.NewString()
	g.CreatedAt = m.s.db.tick()
	m.s.db.genres[g.ID] = *g
	return nil
}

func (m memGenres) GetByID(_ context.Context, id string) (*entity.Genre, error) {
	g, ok := m.s.db.genres[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &g, nil
}

func (m memGenres) Update(_ context.Context, g *entity.Genre) error {
	if _, ok := m.s.db.genres[g.ID]; !ok {
		return repo.ErrNotFound
	}
	m.s.db.genres[g.ID] = *g
	return nil
}

func (m memGenres) Delete(_ context.Context, id string) error {
	if _, ok := m.s.db.genres[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.s.db.genres, id)
	return nil
}

func (m memGenres) List(context.Context) ([]entity.Genre, error) {
	all := slices.Collect(maps.Values(m.s.db.genres))
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// playlists

type memPlaylists struct{ s *memStore }

func (m memPlaylists) Create(_ context.Context, p *entity.Playlist) error {
	if err := m.s.hook("playlists.Create"); err != nil {
		return err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = m.s.db.tick()
	p.UpdatedAt = p.CreatedAt
	m.s.db.playlists[p.ID] = *p
	return nil
}

func (m memPlaylists) withCount(p entity.Playlist) *entity.Playlist {
	p.SongCount = len(m.s.playlistSongIDs(p.ID))
	return &p
}

func (m memPlaylists) GetByID(_ context.Context, id string) (*entity.Playlist, error) {
	p, ok := m.s.db.playlists[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return m.withCount(p), nil
}

func (m memPlaylists) FindByTitle(_ context.Context, userID, title string) (*entity.Playlist, error) {
	for _, p := range m.s.db.playlists {
		if p.UserID == userID && p.Title == title {
			return m.withCount(p), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m memPlaylists) ListByUser(_ context.Context, userID string) ([]entity.Playlist, error) {
	var out []entity.Playlist
	for _, p := range m.s.db.playlists {
		if p.UserID == userID {
			out = append(out, *m.withCount(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m memPlaylists) Update(_ context.Context, p *entity.Playlist) error {
	if _, ok := m.s.db.playlists[p.ID]; !ok {
		return repo.ErrNotFound
	}
	p.UpdatedAt = m.s.db.tick()
	stored := *p
	stored.Songs = nil
	m.s.db.playlists[p.ID] = stored
	return nil
}

func (m memPlaylists) Delete(_ context.Context, id string) error {
	if err := m.s.hook("playlists.Delete"); err != nil {
		return err
	}
	if _, ok := m.s.db.playlists[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.s.db.playlists, id)
	m.s.db.playlistSongs = slices.DeleteFunc(m.s.db.playlistSongs, func(p entity.PlaylistSong) bool { return p.PlaylistID == id })
	return nil
}

func (m memPlaylists) AddSong(_ context.Context, playlistID, songID string) error {
	if err := m.s.hook("playlists.AddSong"); err != nil {
		return err
	}
	if slices.Contains(m.s.playlistSongIDs(playlistID), songID) {
		return repo.ErrDuplicate
	}
	m.s.db.playlistSongs = append(m.s.db.playlistSongs, entity.PlaylistSong{PlaylistID: playlistID, SongID: songID, AddedAt: m.s.db.tick()})
	return nil
}

func (m memPlaylists) RemoveSong(_ context.Context, playlistID, songID string) error {
	n := len(m.s.db.playlistSongs)
	m.s.db.playlistSongs = slices.DeleteFunc(m.s.db.playlistSongs, func(p entity.PlaylistSong) bool {
		return p.PlaylistID == playlistID && p.SongID == songID
	})
	if len(m.s.db.playlistSongs) == n {
		return repo.ErrNotFound
	}
	return nil
}

func (m memPlaylists) HasSong(_ context.Context, playlistID, songID string) (bool, error) {
	return slices.Contains(m.s.playlistSongIDs(playlistID), songID), nil
}

func (m memPlaylists) CountSongs(_ context.Context, playlistID string) (int, error) {
	return len(m.s.playlistSongIDs(playlistID)), nil
}

func (m memPlaylists) ListSongs(_ context.Context, playlistID string) ([]entity.Song, error) {
	var out []entity.Song
	for _, ps := range m.s.db.playlistSongs {
		if ps.PlaylistID == playlistID {
			out = append(out, m.s.songView(m.s.db.songs[ps.SongID]))
		}
	}
	return out, nil
}

func (m memPlaylists) DeleteEmptyLikedPlaylists(ctx context.Context) (int64, error) {
	var n int64
	for id, p := range m.s.db.playlists {
		if p.Title == entity.LikedSongsTitle && len(m.s.playlistSongIDs(id)) == 0 {
			delete(m.s.db.playlists, id)
			n++
		}
	}
	return n, nil
}

// likes

type memLikes struct{ s *memStore }

func (m memLikes) Find(_ context.Context, userID, songID string) (*entity.LikeSong, error) {
	for _, l := range m.s.db.likes {
		if l.UserID == userID && l.SongID == songID {
			return &l, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m memLikes) Create(ctx context.Context, l *entity.LikeSong) error {
	if err := m.s.hook("likes.Create"); err != nil {
		return err
	}
	if _, err := m.Find(ctx, l.UserID, l.SongID); err == nil {
		return repo.ErrDuplicate
	}
	l.CreatedAt = m.s.db.tick()
	m.s.db.likes = append(m.s.db.likes, *l)
	return nil
}

func (m memLikes) Delete(_ context.Context, userID, songID string) error {
	if err := m.s.hook("likes.Delete"); err != nil {
		return err
	}
	m.s.db.likes = slices.DeleteFunc(m.s.db.likes, func(l entity.LikeSong) bool { return l.UserID == userID && l.SongID == songID })
	return nil
}

func (m memLikes) CountByUser(_ context.Context, userID string) (int, error) {
	return len(m.s.likedSongIDs(userID)), nil
}

func (m memLikes) ListSongsByUser(_ context.Context, userID string) ([]entity.Song, error) {
	var out []entity.Song
	for i := len(m.s.db.likes) - 1; i >= 0; i-- {
		if l := m.s.db.likes[i]; l.UserID == userID {
			out = append(out, m.s.songView(m.s.db.songs[l.SongID]))
		}
	}
	return out, nil
}

// history

type memHistory struct{ s *memStore }

func (m memHistory) Create(_ context.Context, h *entity.History) error {
	h.ID = uuid.NewString()
	if h.PlayedAt.IsZero() {
		h.PlayedAt = m.s.db.tick()
	}
	m.s.db.history = append(m.s.db.history, *h)
	return nil
}

func (m memHistory) RecentByUser(_ context.Context, userID string, perDay int) ([]entity.History, error) {
	var all []entity.History
	for _, h := range m.s.db.history {
		if h.UserID == userID {
			all = append(all, h)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PlayedAt.After(all[j].PlayedAt) })
	perDate := map[string]int{}
	var out []entity.History
	for _, h := range all {
		day := h.PlayedAt.UTC().Format(time.DateOnly)
		if perDate[day] >= perDay {
			continue
		}
		perDate[day]++
		song := m.s.songView(m.s.db.songs[h.SongID])
		h.Song = &song
		out = append(out, h)
	}
	return out, nil
}

func (m memHistory) DeleteByUser(_ context.Context, userID string) error {
	m.s.db.history = slices.DeleteFunc(m.s.db.history, func(h entity.History) bool { return h.UserID == userID })
	return nil
}

// follows

type memFollows struct{ s *memStore }

func (m memFollows) Find(_ context.Context, userID, artistID string) (*entity.FollowArtist, error) {
	for _, f := range m.s.db.follows {
		if f.UserID == userID && f.ArtistID == artistID {
			return &f, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m memFollows) Create(_ context.Context, f *entity.FollowArtist) error {
	f.CreatedAt = m.s.db.tick()
	m.s.db.follows = append(m.s.db.follows, *f)
	return nil
}

func (m memFollows) Delete(_ context.Context, userID, artistID string) error {
	m.s.db.follows = slices.DeleteFunc(m.s.db.follows, func(f entity.FollowArtist) bool { return f.UserID == userID && f.ArtistID == artistID })
	return nil
}

func (m memFollows) ListArtistsByUser(_ context.Context, userID string) ([]entity.Artist, error) {
	var out []entity.Artist
	for _, f := range m.s.db.follows {
		if f.UserID == userID {
			out = append(out, m.s.db.artists[f.ArtistID])
		}
	}
	return out, nil
}

// cache store fakes

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type expiring struct {
	value string
	until time.Time
}

type fakeOTP struct {
	mu    sync.Mutex
	clock *fakeClock
	keys  map[string]expiring
	err   error
}

func newFakeOTP(clock *fakeClock) *fakeOTP {
	return &fakeOTP{clock: clock, keys: map[string]expiring{}}
}

func (f *fakeOTP) live(key string) (string, bool) {
	e, ok := f.keys[key]
	if !ok || !f.clock.Now().Before(e.until) {
		delete(f.keys, key)
		return "", false
	}
	return e.value, true
}

func (f *fakeOTP) AcquireCooldown(_ context.Context, email string, window time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	key := "rl:" + email
	if _, ok := f.live(key); ok {
		return false, nil
	}
	f.keys[key] = expiring{value: "1", until: f.clock.Now().Add(window)}
	return true, nil
}

func (f *fakeOTP) SaveCode(_ context.Context, email, code string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys["code:"+email] = expiring{value: code, until: f.clock.Now().Add(ttl)}
	return nil
}

func (f *fakeOTP) ConsumeCode(_ context.Context, email, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	v, ok := f.live("code:" + email)
	if !ok || v != code {
		return false, nil
	}
	delete(f.keys, "code:"+email)
	return true, nil
}

func (f *fakeOTP) Discard(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, "code:"+email)
	delete(f.keys, "rl:"+email)
	return nil
}

func (f *fakeOTP) code(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, _ := f.live("code:" + email)
	return v
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]repo.Session
}

func newFakeSessions() *fakeSessions { return &fakeSessions{sessions: map[string]repo.Session{}} }

func (f *fakeSessions) Save(_ context.Context, s repo.Session, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.UserID] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, userID string) (*repo.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSessions) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
	return nil
}

type sentMail struct {
	Kind  string
	Email string
	Value string
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (f *fakeNotifier) SendVerification(_ context.Context, u *entity.User, link string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{Kind: "verify", Email: u.Email, Value: link})
	return nil
}

func (f *fakeNotifier) SendPasswordOTP(_ context.Context, u *entity.User, code string, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{Kind: "otp", Email: u.Email, Value: code})
	return nil
}

type fakeObjects struct {
	objects map[string]string
	failUp  bool
}

func newFakeObjects() *fakeObjects { return &fakeObjects{objects: map[string]string{}} }

func (f *fakeObjects) Upload(_ context.Context, key, contentType string, r io.Reader) (string, error) {
	if f.failUp {
		return "", errInjected
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = contentType + ":" + string(b)
	return f.URL(key), nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeObjects) URL(key string) string { return "https://cdn.test/" + key }

type fakeGoogle struct {
	identities map[string]GoogleIdentity
}

func (f *fakeGoogle) VerifyGoogleToken(_ context.Context, idToken string) (*GoogleIdentity, error) {
	id, ok := f.identities[idToken]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return &id, nil
}

type fakeIndex struct {
	songs   map[string]entity.Song
	artists map[string]entity.Artist
	down    bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{songs: map[string]entity.Song{}, artists: map[string]entity.Artist{}}
}

func (f *fakeIndex) IndexSong(_ context.Context, s *entity.Song) error {
	f.songs[s.ID] = *s
	return nil
}

func (f *fakeIndex) DeleteSong(_ context.Context, id string) error {
	delete(f.songs, id)
	return nil
}

func (f *fakeIndex) IndexArtist(_ context.Context, a *entity.Artist) error {
	f.artists[a.ID] = *a
	return nil
}

func (f *fakeIndex) DeleteArtist(_ context.Context, id string) error {
	delete(f.artists, id)
	return nil
}

func (f *fakeIndex) SearchSongs(_ context.Context, prefix string, limit int) ([]entity.Song, error) {
	if f.down {
		return nil, errors.New("index down")
	}
	var out []entity.Song
	for _, s := range f.songs {
		if strings.HasPrefix(strings.ToLower(s.Title), strings.ToLower(prefix)) && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeIndex) SearchArtists(_ context.Context, prefix string, limit int) ([]entity.Artist, error) {
	if f.down {
		return nil, errors.New("index down")
	}
	var out []entity.Artist
	for _, a := range f.artists {
		if strings.HasPrefix(strings.ToLower(a.Name), strings.ToLower(prefix)) && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

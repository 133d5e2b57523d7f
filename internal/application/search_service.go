package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/pkg/metrics"
)

const (
	searchLimit     = 20
	suggestionLimit = 10
	maxQueryLen     = 100
)

// suggestionOverfetch is how many rows Suggestions reads per slot, since titles repeat across artists.
const suggestionOverfetch = 5

// SearchService answers prefix queries over songs and artists, preferring the
// search index and falling back to the relational store.
type SearchService struct {
	Store  repo.Store
	Index  SearchIndex // nil means database only
	Logger *logrus.Logger
}

func NewSearchService(store repo.Store, index SearchIndex, logger *logrus.Logger) *SearchService {
	return &SearchService{Store: store, Index: index, Logger: logger}
}

type SearchResult struct {
	Songs   []entity.Song
	Artists []entity.Artist
}

func cleanQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrEmptyQuery
	}
	if r := []rune(q); len(r) > maxQueryLen {
		q = string(r[:maxQueryLen])
	}
	return q, nil
}

// Search returns songs whose title and artists whose name start with q.
func (s *SearchService) Search(ctx context.Context, q string) (*SearchResult, error) {
	q, err := cleanQuery(q)
	if err != nil {
		return nil, err
	}
	songs, err := s.songs(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	artists, err := s.artists(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Songs: songs, Artists: artists}, nil
}

// Suggestions returns up to ten song titles starting with q.
func (s *SearchService) Suggestions(ctx context.Context, q string) ([]string, error) {
	q, err := cleanQuery(q)
	if err != nil {
		return nil, err
	}
	songs, err := s.songs(ctx, q, suggestionLimit*suggestionOverfetch)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, suggestionLimit)
	seen := make(map[string]struct{}, suggestionLimit)
	for _, song := range songs {
		if len(titles) == suggestionLimit {
			break
		}
		if _, ok := seen[song.Title]; ok {
			continue
		}
		seen[song.Title] = struct{}{}
		titles = append(titles, song.Title)
	}
	return titles, nil
}

func (s *SearchService) songs(ctx context.Context, q string, limit int) ([]entity.Song, error) {
	if s.Index != nil {
		songs, err := s.Index.SearchSongs(ctx, q, limit)
		if err == nil {
			return songs, nil
		}
		s.warnFallback(err, q)
	}
	songs, err := s.Store.Repos().Songs.SearchByPrefix(ctx, q, limit)
	if err != nil {
		return nil, fail(s.Logger, "search failed", err, logrus.Fields{"q": q})
	}
	return songs, nil
}

func (s *SearchService) artists(ctx context.Context, q string, limit int) ([]entity.Artist, error) {
	if s.Index != nil {
		artists, err := s.Index.SearchArtists(ctx, q, limit)
		if err == nil {
			return artists, nil
		}
		s.warnFallback(err, q)
	}
	artists, err := s.Store.Repos().Artists.SearchByPrefix(ctx, q, limit)
	if err != nil {
		return nil, fail(s.Logger, "search failed", err, logrus.Fields{"q": q})
	}
	return artists, nil
}

func (s *SearchService) warnFallback(err error, q string) {
	metrics.SearchFallbacks.Inc()
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("q", q).Warn("search index unavailable, falling back to database")
	}
}

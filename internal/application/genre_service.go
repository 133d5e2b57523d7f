package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

type GenreInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (s *CatalogService) ListGenres(ctx context.Context) ([]entity.Genre, error) {
	genres, err := s.Store.Repos().Genres.List(ctx)
	if err != nil {
		return nil, fail(s.Logger, "failed to list genres", err, nil)
	}
	return genres, nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, in GenreInput) (*entity.Genre, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	g := &entity.Genre{Name: in.Name}
	if err := s.Store.Repos().Genres.Create(ctx, g); err != nil {
		return nil, fail(s.Logger, "failed to create genre", mapDuplicate(err, ErrGenreExists), logrus.Fields{"name": in.Name})
	}
	return g, nil
}

func (s *CatalogService) UpdateGenre(ctx context.Context, id string, in GenreInput) (*entity.Genre, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	r := s.Store.Repos()
	g, err := r.Genres.GetByID(ctx, id)
	if err != nil {
		return nil, fail(s.Logger, "failed to update genre", mapNotFound(err, ErrGenreNotFound), logrus.Fields{"genre_id": id})
	}
	g.Name = in.Name
	if err := r.Genres.Update(ctx, g); err != nil {
		return nil, fail(s.Logger, "failed to update genre", mapDuplicate(mapNotFound(err, ErrGenreNotFound), ErrGenreExists), logrus.Fields{"genre_id": id})
	}
	return g, nil
}

// DeleteGenre refuses to remove a genre that still classifies songs.
func (s *CatalogService) DeleteGenre(ctx context.Context, id string) error {
	err := s.Store.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		if _, err := r.Genres.GetByID(ctx, id); err != nil {
			return mapNotFound(err, ErrGenreNotFound)
		}
		_, total, err := r.Songs.List(ctx, repo.SongFilter{GenreID: id, Page: repo.Page{Limit: 1}})
		if err != nil {
			return err
		}
		if total > 0 {
			return ErrGenreInUse
		}
		return mapNotFound(r.Genres.Delete(ctx, id), ErrGenreNotFound)
	})
	if err != nil {
		return fail(s.Logger, "failed to delete genre", err, logrus.Fields{"genre_id": id})
	}
	return nil
}

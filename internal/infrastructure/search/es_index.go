package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ESIndex mirrors songs and artists into Elasticsearch for prefix search.
// Documents carry everything needed to render a result without a database hit.
type ESIndex struct {
	es           *elasticsearch.Client
	songsIndex   string
	artistsIndex string
}

func NewESIndex(es *elasticsearch.Client, songsIndex, artistsIndex string) *ESIndex {
	return &ESIndex{es: es, songsIndex: songsIndex, artistsIndex: artistsIndex}
}

type songDoc struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ArtistID   string    `json:"artist_id"`
	ArtistName string    `json:"artist_name"`
	GenreID    string    `json:"genre_id"`
	GenreName  string    `json:"genre_name"`
	Duration   int       `json:"duration"`
	AudioKey   string    `json:"audio_key"`
	ImageKey   string    `json:"image_key"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type artistDoc struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	ImageKey  string    `json:"image_key"`
	Followers int       `json:"followers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// keyword subfields let prefix queries match from the start of the whole title.
var mappings = map[string]string{
	"songs": `{"mappings":{"properties":{
  "title":{"type":"text","fields":{"keyword":{"type":"keyword","ignore_above":256}}},
  "artist_id":{"type":"keyword"},"genre_id":{"type":"keyword"}}}}`,
	"artists": `{"mappings":{"properties":{
  "name":{"type":"text","fields":{"keyword":{"type":"keyword","ignore_above":256}}}}}}`,
}

// EnsureIndices creates missing indices with their mappings.
func (x *ESIndex) EnsureIndices(ctx context.Context) error {
	for kind, index := range map[string]string{"songs": x.songsIndex, "artists": x.artistsIndex} {
		res, err := x.es.Indices.Exists([]string{index}, x.es.Indices.Exists.WithContext(ctx))
		if err != nil {
			return err
		}
		_ = res.Body.Close()
		if res.StatusCode == http.StatusOK {
			continue
		}
		res, err = x.es.Indices.Create(index,
			x.es.Indices.Create.WithContext(ctx),
			x.es.Indices.Create.WithBody(strings.NewReader(mappings[kind])))
		if err != nil {
			return err
		}
		if err := checkResponse(res, "create index "+index); err != nil {
			return err
		}
	}
	return nil
}

func (x *ESIndex) IndexSong(ctx context.Context, s *entity.Song) error {
	return x.put(ctx, x.songsIndex, s.ID, songDoc{
		ID:         s.ID,
		Title:      s.Title,
		ArtistID:   s.ArtistID,
		ArtistName: s.ArtistName,
		GenreID:    s.GenreID,
		GenreName:  s.GenreName,
		Duration:   s.Duration,
		AudioKey:   s.AudioKey,
		ImageKey:   s.ImageKey,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	})
}

func (x *ESIndex) DeleteSong(ctx context.Context, id string) error {
	return x.remove(ctx, x.songsIndex, id)
}

func (x *ESIndex) IndexArtist(ctx context.Context, a *entity.Artist) error {
	return x.put(ctx, x.artistsIndex, a.ID, artistDoc{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		ImageKey:  a.ImageKey,
		Followers: a.Followers,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	})
}

func (x *ESIndex) DeleteArtist(ctx context.Context, id string) error {
	return x.remove(ctx, x.artistsIndex, id)
}

func (x *ESIndex) SearchSongs(ctx context.Context, prefix string, limit int) ([]entity.Song, error) {
	var hits []songDoc
	if err := x.search(ctx, x.songsIndex, "title", prefix, limit, &hits); err != nil {
		return nil, err
	}
	out := make([]entity.Song, 0, len(hits))
	for _, d := range hits {
		out = append(out, entity.Song{
			ID:         d.ID,
			Title:      d.Title,
			ArtistID:   d.ArtistID,
			ArtistName: d.ArtistName,
			GenreID:    d.GenreID,
			GenreName:  d.GenreName,
			Duration:   d.Duration,
			AudioKey:   d.AudioKey,
			ImageKey:   d.ImageKey,
			CreatedAt:  d.CreatedAt,
			UpdatedAt:  d.UpdatedAt,
		})
	}
	return out, nil
}

func (x *ESIndex) SearchArtists(ctx context.Context, prefix string, limit int) ([]entity.Artist, error) {
	var hits []artistDoc
	if err := x.search(ctx, x.artistsIndex, "name", prefix, limit, &hits); err != nil {
		return nil, err
	}
	out := make([]entity.Artist, 0, len(hits))
	for _, d := range hits {
		out = append(out, entity.Artist{
			ID:        d.ID,
			Name:      d.Name,
			Bio:       d.Bio,
			ImageKey:  d.ImageKey,
			Followers: d.Followers,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return out, nil
}

func (x *ESIndex) put(ctx context.Context, index, id string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req := esapi.IndexRequest{Index: index, DocumentID: id, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	return checkResponse(res, "index "+index+"/"+id)
}

func (x *ESIndex) remove(ctx context.Context, index, id string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req := esapi.DeleteRequest{Index: index, DocumentID: id}
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	if res.StatusCode == http.StatusNotFound {
		_ = res.Body.Close()
		return nil
	}
	return checkResponse(res, "delete "+index+"/"+id)
}

// search runs a case-insensitive prefix query on the keyword subfield of
// field and decodes the matching sources into dst.
func (x *ESIndex) search(ctx context.Context, index, field, prefix string, limit int, dst any) error {
	query := map[string]any{
		"query": map[string]any{
			"prefix": map[string]any{
				field + ".keyword": map[string]any{
					"value":            prefix,
					"case_insensitive": true,
				},
			},
		},
		"sort": []any{map[string]any{field + ".keyword": "asc"}},
		"size": limit,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("search %s: %s", index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return err
	}
	raw := make([]json.RawMessage, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		raw = append(raw, h.Source)
	}
	joined, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(joined, dst)
}

func checkResponse(res *esapi.Response, op string) error {
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("%s: %s", op, res.Status())
	}
	return nil
}

var _ application.SearchIndex = (*ESIndex)(nil)

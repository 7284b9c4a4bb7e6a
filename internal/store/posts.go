package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"filmwallaa/internal/catalog"
)

const (
	tablePosts     = "migrated_posts"
	tableMappings  = "movie_mappings"
	tableFailed    = "failed_mappings"
	tablePublished = "published_reviews"
	tableMovies    = "movies"
)

// SaveBatch persists a migration run in one transaction. Matched posts get
// their internal movie id assigned from the movies collection, and each
// post ends up with either a mapping or a failed record, never both.
func (s *Store) SaveBatch(ctx context.Context, batch Batch) error {
	if len(batch.Posts) == 0 && len(batch.Mappings) == 0 && len(batch.Failed) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)
	now := s.now()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		movieIDs := make(map[string]string, len(batch.Mappings))
		for _, post := range batch.Posts {
			if post.CatalogData != nil {
				movieID, err := upsertMovie(ctx, tx, *post.CatalogData, now)
				if err != nil {
					return err
				}
				post.MovieID = movieID
				post.CatalogID = post.CatalogData.CatalogID
				movieIDs[post.ID] = movieID
			}
			if err := putPost(ctx, tx, post); err != nil {
				return err
			}
		}
		for _, mapping := range batch.Mappings {
			if id, ok := movieIDs[mapping.PostID]; ok {
				mapping.MovieID = id
			}
			if err := putMapping(ctx, tx, mapping); err != nil {
				return err
			}
		}
		for _, failed := range batch.Failed {
			if err := putFailed(ctx, tx, failed); err != nil {
				return err
			}
		}
		return nil
	})
}

// SourceKeys returns the dedupe keys of every migrated and published post.
func (s *Store) SourceKeys(ctx context.Context) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	for _, table := range []string{tablePosts, tablePublished} {
		query, args, err := sq.Select("COALESCE(original_url, '')", "slug").From(table).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build source key query: %w", err)
		}
		rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
		if err != nil {
			return nil, fmt.Errorf("list source keys: %w", err)
		}
		for rows.Next() {
			var originalURL, slug string
			if err := rows.Scan(&originalURL, &slug); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan source key: %w", err)
			}
			keys[SourceKey(originalURL, slug)] = struct{}{}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate source keys: %w", err)
		}
	}
	return keys, nil
}

// ListPosts returns a page of migrated posts with the given status, newest
// migration first, along with the total number of matching posts. An empty
// status lists every migrated post. A non-positive limit returns all rows.
func (s *Store) ListPosts(ctx context.Context, status PostStatus, limit, offset int) ([]*MigratedPost, int, error) {
	ctx = ensureContext(ctx)
	where := sq.Eq{}
	if status != "" {
		where["status"] = string(status)
	}

	total, err := count(ctx, s.db, sq.Select("COUNT(*)").From(tablePosts).Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	builder := sq.Select("doc").From(tablePosts).Where(where).OrderBy("migrated_at DESC", "id")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		if limit <= 0 {
			builder = builder.Limit(uint64(1<<63 - 1))
		}
		builder = builder.Offset(uint64(offset))
	}
	posts, err := selectDocs[MigratedPost](ctx, s.db, builder)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// GetPost loads a migrated post by id.
func (s *Store) GetPost(ctx context.Context, id string) (*MigratedPost, error) {
	post, err := getPost(ensureContext(ctx), s.db, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, notFound(tablePosts, id)
	}
	return post, nil
}

// UpdatePost overwrites an existing migrated post.
func (s *Store) UpdatePost(ctx context.Context, post *MigratedPost) error {
	if post == nil {
		return errors.New("update post: nil post")
	}
	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getPost(ctx, tx, post.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFound(tablePosts, post.ID)
		}
		return putPost(ctx, tx, post)
	})
}

// MutatePost reads the post, applies fn, and writes the result back within
// one transaction. fn may run more than once when SQLite reports the
// database busy, each time on a fresh read.
func (s *Store) MutatePost(ctx context.Context, id string, fn func(*MigratedPost) error) (*MigratedPost, error) {
	if fn == nil {
		return nil, errors.New("mutate post: nil func")
	}
	ctx = ensureContext(ctx)
	var updated *MigratedPost
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		post, err := getPost(ctx, tx, id)
		if err != nil {
			return err
		}
		if post == nil {
			return notFound(tablePosts, id)
		}
		if err := fn(post); err != nil {
			return err
		}
		post.ID = id
		if err := putPost(ctx, tx, post); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func getPost(ctx context.Context, runner queryer, id string) (*MigratedPost, error) {
	post, err := selectDoc[MigratedPost](ctx, runner,
		sq.Select("doc").From(tablePosts).Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return post, nil
}

func putPost(ctx context.Context, runner execer, post *MigratedPost) error {
	if post.ID == "" {
		return errors.New("put post: missing id")
	}
	doc, err := marshalDoc(post)
	if err != nil {
		return err
	}
	var catalogID any
	if post.CatalogID > 0 {
		catalogID = post.CatalogID
	}
	_, err = exec(ctx, runner, sq.Insert(tablePosts).Options("OR REPLACE").
		Columns("id", "slug", "original_url", "status", "catalog_id", "migrated_at", "published_at", "doc").
		Values(post.ID, post.Slug, nullableString(post.OriginalURL), string(post.Status), catalogID,
			formatTime(post.MigratedAt), nullableTime(post.PublishedAt), doc))
	if err != nil {
		return fmt.Errorf("put post %s: %w", post.ID, err)
	}
	return nil
}

// upsertMovie returns the internal id for a catalog movie, creating the
// movie on first sight and refreshing its data otherwise.
func upsertMovie(ctx context.Context, tx *sql.Tx, data catalog.CandidateMovie, now time.Time) (string, error) {
	if data.CatalogID <= 0 {
		return "", fmt.Errorf("upsert movie: invalid catalog id %d", data.CatalogID)
	}
	existing, err := selectDoc[Movie](ctx, tx,
		sq.Select("doc").From(tableMovies).Where(sq.Eq{"catalog_id": data.CatalogID}))
	if err != nil {
		return "", fmt.Errorf("lookup movie %d: %w", data.CatalogID, err)
	}

	movie := Movie{
		ID:        uuid.NewString(),
		CatalogID: data.CatalogID,
		Title:     data.Title,
		Year:      data.Year,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		movie.ID = existing.ID
		movie.CreatedAt = existing.CreatedAt
	}
	doc, err := marshalDoc(movie)
	if err != nil {
		return "", err
	}

	if existing == nil {
		_, err = exec(ctx, tx, sq.Insert(tableMovies).
			Columns("id", "catalog_id", "created_at", "updated_at", "doc").
			Values(movie.ID, movie.CatalogID, formatTime(movie.CreatedAt), formatTime(movie.UpdatedAt), doc))
	} else {
		_, err = exec(ctx, tx, sq.Update(tableMovies).
			Set("updated_at", formatTime(movie.UpdatedAt)).
			Set("doc", doc).
			Where(sq.Eq{"id": movie.ID}))
	}
	if err != nil {
		return "", fmt.Errorf("save movie %d: %w", data.CatalogID, err)
	}
	return movie.ID, nil
}

// GetMovie loads a movie by its internal id.
func (s *Store) GetMovie(ctx context.Context, id string) (*Movie, error) {
	movie, err := selectDoc[Movie](ensureContext(ctx), s.db,
		sq.Select("doc").From(tableMovies).Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("get movie %s: %w", id, err)
	}
	if movie == nil {
		return nil, notFound(tableMovies, id)
	}
	return movie, nil
}

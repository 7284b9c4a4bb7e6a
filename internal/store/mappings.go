package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"filmwallaa/internal/catalog"
)

// ListMappings returns every mapping record, newest first.
func (s *Store) ListMappings(ctx context.Context) ([]*MappingRecord, error) {
	mappings, err := selectDocs[MappingRecord](ensureContext(ctx), s.db,
		sq.Select("doc").From(tableMappings).OrderBy("created_at DESC", "post_id"))
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return mappings, nil
}

// GetMapping loads the mapping record for a post.
func (s *Store) GetMapping(ctx context.Context, postID string) (*MappingRecord, error) {
	mapping, err := selectDoc[MappingRecord](ensureContext(ctx), s.db,
		sq.Select("doc").From(tableMappings).Where(sq.Eq{"post_id": postID}))
	if err != nil {
		return nil, fmt.Errorf("get mapping %s: %w", postID, err)
	}
	if mapping == nil {
		return nil, notFound(tableMappings, postID)
	}
	return mapping, nil
}

// ListFailed returns every failed mapping, oldest first.
func (s *Store) ListFailed(ctx context.Context) ([]*FailedMapping, error) {
	failed, err := selectDocs[FailedMapping](ensureContext(ctx), s.db,
		sq.Select("doc").From(tableFailed).OrderBy("created_at", "post_id"))
	if err != nil {
		return nil, fmt.Errorf("list failed mappings: %w", err)
	}
	return failed, nil
}

// ApplyManualMapping attaches a moderator-chosen catalog movie to the post
// with id postID. Within one transaction the post is re-read, the movie is
// registered under its internal id, the post and mapping are rewritten, and
// any failed mapping for the post is removed. The mapping's post fields are
// filled from the stored post.
func (s *Store) ApplyManualMapping(ctx context.Context, postID string, movie catalog.CandidateMovie, mapping *MappingRecord) (*MigratedPost, error) {
	if mapping == nil {
		return nil, errors.New("apply manual mapping: nil mapping")
	}
	ctx = ensureContext(ctx)
	now := s.now()
	var updated *MigratedPost
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		post, err := getPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		if post == nil {
			return notFound(tablePosts, postID)
		}
		movieID, err := upsertMovie(ctx, tx, movie, now)
		if err != nil {
			return err
		}
		data := movie
		post.CatalogData = &data
		post.MovieID = movieID
		post.CatalogID = movie.CatalogID
		post.ManualMapping = true
		if movie.PosterURL != "" {
			post.FeaturedImage = movie.PosterURL
		}
		mapping.PostID = post.ID
		mapping.PostTitle = post.Title
		mapping.MatchedTitle = movie.Title
		mapping.Year = movie.Year
		mapping.MovieID = movieID
		mapping.CatalogID = movie.CatalogID
		if err := putPost(ctx, tx, post); err != nil {
			return err
		}
		if err := putMapping(ctx, tx, mapping); err != nil {
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

func putMapping(ctx context.Context, runner execer, mapping *MappingRecord) error {
	doc, err := marshalDoc(mapping)
	if err != nil {
		return err
	}
	if _, err := exec(ctx, runner, sq.Insert(tableMappings).Options("OR REPLACE").
		Columns("post_id", "catalog_id", "movie_id", "confidence", "created_at", "doc").
		Values(mapping.PostID, mapping.CatalogID, nullableString(mapping.MovieID), string(mapping.Confidence),
			formatTime(mapping.CreatedAt), doc)); err != nil {
		return fmt.Errorf("put mapping %s: %w", mapping.PostID, err)
	}
	if _, err := exec(ctx, runner, sq.Delete(tableFailed).Where(sq.Eq{"post_id": mapping.PostID})); err != nil {
		return fmt.Errorf("clear failed mapping %s: %w", mapping.PostID, err)
	}
	return nil
}

func putFailed(ctx context.Context, runner execer, failed *FailedMapping) error {
	doc, err := marshalDoc(failed)
	if err != nil {
		return err
	}
	if _, err := exec(ctx, runner, sq.Insert(tableFailed).Options("OR REPLACE").
		Columns("post_id", "created_at", "doc").
		Values(failed.PostID, formatTime(failed.CreatedAt), doc)); err != nil {
		return fmt.Errorf("put failed mapping %s: %w", failed.PostID, err)
	}
	if _, err := exec(ctx, runner, sq.Delete(tableMappings).Where(sq.Eq{"post_id": failed.PostID})); err != nil {
		return fmt.Errorf("clear mapping %s: %w", failed.PostID, err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// PublishPost moves a migrated post into the published collection. The
// post, its mapping, and any failed mapping are removed in the same
// transaction that inserts the review. A post that is no longer in the
// migrated collection yields ErrNotFound.
func (s *Store) PublishPost(ctx context.Context, postID string, review *PublishedReview) error {
	if review == nil {
		return errors.New("publish post: nil review")
	}
	_, err := s.Publish(ctx, postID, func(*MigratedPost) (*PublishedReview, error) {
		return review, nil
	})
	return err
}

// Publish is PublishPost with the review built by build from the post as
// read inside the transaction.
func (s *Store) Publish(ctx context.Context, postID string, build func(*MigratedPost) (*PublishedReview, error)) (*PublishedReview, error) {
	if build == nil {
		return nil, errors.New("publish post: nil builder")
	}
	ctx = ensureContext(ctx)
	var published *PublishedReview
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		post, err := getPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		if post == nil {
			return notFound(tablePosts, postID)
		}
		review, err := build(post)
		if err != nil {
			return err
		}
		if review == nil {
			return errors.New("publish post: nil review")
		}

		if _, err := exec(ctx, tx, sq.Delete(tablePosts).Where(sq.Eq{"id": postID})); err != nil {
			return fmt.Errorf("remove post %s: %w", postID, err)
		}
		for _, table := range []string{tableMappings, tableFailed} {
			if _, err := exec(ctx, tx, sq.Delete(table).Where(sq.Eq{"post_id": postID})); err != nil {
				return fmt.Errorf("remove %s for %s: %w", table, postID, err)
			}
		}

		doc, err := marshalDoc(review)
		if err != nil {
			return err
		}
		if _, err := exec(ctx, tx, sq.Insert(tablePublished).
			Columns("id", "slug", "original_url", "published_at", "doc").
			Values(review.ID, review.Slug, nullableString(review.OriginalURL), formatTime(review.PublishedAt), doc)); err != nil {
			return fmt.Errorf("insert review %s: %w", review.ID, err)
		}
		published = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return published, nil
}

// ListPublished returns published reviews, most recently published first.
func (s *Store) ListPublished(ctx context.Context, limit, offset int) ([]*PublishedReview, int, error) {
	ctx = ensureContext(ctx)
	total, err := count(ctx, s.db, sq.Select("COUNT(*)").From(tablePublished))
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	builder := sq.Select("doc").From(tablePublished).OrderBy("published_at DESC", "id")
	if limit > 0 {
		builder = builder.Limit(uint64(limit)).Offset(uint64(max(offset, 0)))
	}
	reviews, err := selectDocs[PublishedReview](ctx, s.db, builder)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

// GetPublished loads a published review by id.
func (s *Store) GetPublished(ctx context.Context, id string) (*PublishedReview, error) {
	review, err := selectDoc[PublishedReview](ensureContext(ctx), s.db,
		sq.Select("doc").From(tablePublished).Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	if review == nil {
		return nil, notFound(tablePublished, id)
	}
	return review, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// ClearAll empties the migrated, mapping, and failed collections. Published
// reviews and the movies collection are kept.
func (s *Store) ClearAll(ctx context.Context) error {
	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{tablePosts, tableMappings, tableFailed} {
			if _, err := exec(ctx, tx, sq.Delete(table)); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// Counts reports the size of every collection.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	ctx = ensureContext(ctx)
	var counts Counts

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM migrated_posts GROUP BY status")
	if err != nil {
		return counts, fmt.Errorf("count posts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("scan post count: %w", err)
		}
		switch PostStatus(status) {
		case StatusPending:
			counts.Pending = n
		case StatusRejected:
			counts.Rejected = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("iterate post counts: %w", err)
	}

	targets := []struct {
		table string
		dst   *int
	}{
		{tableMappings, &counts.Mappings},
		{tableFailed, &counts.Failed},
		{tablePublished, &counts.Published},
		{tableMovies, &counts.Movies},
	}
	for _, target := range targets {
		n, err := count(ctx, s.db, sq.Select("COUNT(*)").From(target.table))
		if err != nil {
			return counts, fmt.Errorf("count %s: %w", target.table, err)
		}
		*target.dst = n
	}
	return counts, nil
}

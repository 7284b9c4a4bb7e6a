package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return formatTime(value)
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func marshalDoc(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(data), nil
}

func exec(ctx context.Context, runner execer, builder sq.Sqlizer) (sql.Result, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build statement: %w", err)
	}
	return runner.ExecContext(ctx, query, args...)
}

func count(ctx context.Context, runner queryer, builder sq.SelectBuilder) (int, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := runner.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// selectDocs runs a single-column doc query and decodes each row into a new T.
func selectDocs[T any](ctx context.Context, runner queryer, builder sq.SelectBuilder) ([]*T, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := runner.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		item := new(T)
		if err := json.Unmarshal([]byte(doc), item); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// selectDoc returns the first matching document, or nil when nothing matches.
func selectDoc[T any](ctx context.Context, runner queryer, builder sq.SelectBuilder) (*T, error) {
	items, err := selectDocs[T](ctx, runner, builder.Limit(1))
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"filmwallaa/internal/catalog"
	"filmwallaa/internal/migration"
	"filmwallaa/internal/store"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitCode maps classified errors to process exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, migration.ErrRunInProgress):
		return 4
	case store.ErrorKind(err) == "not_found", catalog.ErrorKind(err) == "not_found":
		return 3
	case catalog.ErrorKind(err) == "unavailable":
		return 5
	default:
		return 1
	}
}

func truncate(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRating(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', 1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func movieLabel(movie *catalog.CandidateMovie) string {
	if movie == nil {
		return "-"
	}
	if movie.Year > 0 {
		return fmt.Sprintf("%s (%d)", movie.Title, movie.Year)
	}
	return movie.Title
}

func parseTags(value string) []string {
	var tags []string
	for _, tag := range strings.Split(value, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

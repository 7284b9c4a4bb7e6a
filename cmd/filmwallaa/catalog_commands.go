package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filmwallaa/internal/language"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Query the movie catalog",
	}
	catalogCmd.AddCommand(newCatalogSearchCommand(ctx))
	catalogCmd.AddCommand(newCatalogDetailsCommand(ctx))
	return catalogCmd
}

func newCatalogSearchCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search the catalog by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			client, err := svc.catalog()
			if err != nil {
				return err
			}
			movies, err := client.Search(cmd.Context(), strings.Join(args, " "), lang)
			if err != nil {
				return err
			}
			if limit > 0 && len(movies) > limit {
				movies = movies[:limit]
			}
			if asJSON {
				return writeJSON(cmd, movies)
			}
			out := cmd.OutOrStdout()
			if len(movies) == 0 {
				fmt.Fprintln(out, "No matches")
				return nil
			}
			rows := make([][]string, 0, len(movies))
			for _, movie := range movies {
				year := "-"
				if movie.Year > 0 {
					year = strconv.Itoa(movie.Year)
				}
				rows = append(rows, []string{
					strconv.FormatInt(movie.CatalogID, 10),
					truncate(movie.Title, 48),
					year,
					strconv.FormatFloat(movie.Rating, 'f', 1, 64),
					language.DisplayName(movie.Language),
					movie.IndustryTag,
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Catalog ID", "Title", "Year", "Rating", "Language", "Industry"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "language", "", "Catalog language (defaults to catalog.language)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum results to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newCatalogDetailsCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "details <catalog-id>",
		Short: "Show full catalog details for a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || catalogID <= 0 {
				return fmt.Errorf("invalid catalog id %q", args[0])
			}
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			client, err := svc.catalog()
			if err != nil {
				return err
			}
			movie, err := client.Details(cmd.Context(), catalogID, lang)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, movie)
			}
			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Title", movieLabel(movie)},
				{"Catalog ID", strconv.FormatInt(movie.CatalogID, 10)},
				{"Release date", movie.ReleaseDate},
				{"Rating", strconv.FormatFloat(movie.Rating, 'f', 1, 64)},
				{"Genres", strings.Join(movie.Genres, ", ")},
				{"Language", language.DisplayName(movie.Language)},
				{"Industry", movie.IndustryTag},
				{"Director", movie.Director},
				{"Cast", strings.Join(movie.Cast, ", ")},
				{"Runtime", fmt.Sprintf("%d min", movie.Runtime)},
				{"Trailer", movie.TrailerURL},
				{"Poster", movie.PosterURL},
			}
			fmt.Fprintln(out, renderTable(out, []string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "language", "", "Catalog language (defaults to catalog.language)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

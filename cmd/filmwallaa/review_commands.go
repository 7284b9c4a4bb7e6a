package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filmwallaa/internal/review"
	"filmwallaa/internal/store"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Moderate migrated posts",
	}
	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewFailedCommand(ctx))
	reviewCmd.AddCommand(newReviewMappingsCommand(ctx))
	reviewCmd.AddCommand(newReviewApproveCommand(ctx))
	reviewCmd.AddCommand(newReviewRejectCommand(ctx))
	reviewCmd.AddCommand(newReviewMapCommand(ctx))
	reviewCmd.AddCommand(newReviewClearCommand(ctx))
	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	var limit, offset int
	var rejected, asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts awaiting moderation",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			moderation := svc.reviewService()
			var page review.Page
			if rejected {
				page, err = moderation.ListRejected(cmd.Context(), limit, offset)
			} else {
				page, err = moderation.ListPending(cmd.Context(), limit, offset)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, page)
			}

			out := cmd.OutOrStdout()
			if len(page.Posts) == 0 {
				fmt.Fprintf(out, "No posts (total %d)\n", page.Total)
				return nil
			}
			rows := make([][]string, 0, len(page.Posts))
			for _, post := range page.Posts {
				rows = append(rows, []string{
					post.ID,
					truncate(post.Title, 48),
					formatDate(post.PublishedAt),
					formatRating(post.RatingGuess),
					movieLabel(post.CatalogData),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Title", "Published", "Rating", "Movie"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "Showing %d-%d of %d\n", page.Offset+1, page.Offset+len(page.Posts), page.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum posts to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Posts to skip")
	cmd.Flags().BoolVar(&rejected, "rejected", false, "List rejected posts instead of pending ones")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newReviewFailedCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List posts without a catalog match",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			failed, err := svc.reviewService().ListFailed(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string]any{"failed_mappings": failed, "total": len(failed)})
			}
			out := cmd.OutOrStdout()
			if len(failed) == 0 {
				fmt.Fprintln(out, "No failed mappings")
				return nil
			}
			fmt.Fprintln(out, renderFailed(out, failed))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newReviewMappingsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "List post to movie mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			mappings, err := svc.reviewService().ListMappings(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, mappings)
			}
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(mappings))
			for _, m := range mappings {
				rows = append(rows, []string{
					shortID(m.PostID),
					truncate(m.PostTitle, 40),
					m.MatchedTitle,
					strconv.FormatInt(m.CatalogID, 10),
					string(m.Confidence),
					strconv.FormatFloat(m.Similarity, 'f', 2, 64),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Post", "Title", "Movie", "Catalog ID", "Confidence", "Similarity"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newReviewApproveCommand(ctx *commandContext) *cobra.Command {
	var movieID, title, excerpt, tags string
	var rating float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "approve <post-id>",
		Short: "Publish a migrated post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			overrides := review.Overrides{
				MovieID: movieID,
				Title:   title,
				Excerpt: excerpt,
				Tags:    parseTags(tags),
			}
			if cmd.Flags().Changed("rating") {
				overrides.Rating = &rating
			}
			published, err := svc.reviewService().Approve(cmd.Context(), args[0], overrides)
			if err != nil {
				return notFoundHint(err, args[0])
			}
			if asJSON {
				return writeJSON(cmd, published)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %q (rating %.1f)\n", published.Title, published.Rating)
			return nil
		},
	}
	cmd.Flags().StringVar(&movieID, "movie-id", "", "Internal movie id to attach instead of the mapped one")
	cmd.Flags().StringVar(&title, "title", "", "Replacement title")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "Replacement excerpt")
	cmd.Flags().Float64Var(&rating, "rating", 0, "Rating from 0 to 5")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated replacement tags")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the published review as JSON")
	return cmd
}

func newReviewRejectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <post-id>",
		Short: "Mark a migrated post as rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			post, err := svc.reviewService().Reject(cmd.Context(), args[0])
			if err != nil {
				return notFoundHint(err, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rejected %q\n", post.Title)
			return nil
		},
	}
}

func newReviewMapCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "map <post-id> <catalog-id>",
		Short: "Attach a catalog movie to a post by catalog id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogID, err := strconv.ParseInt(strings.TrimSpace(args[1]), 10, 64)
			if err != nil || catalogID <= 0 {
				return fmt.Errorf("invalid catalog id %q", args[1])
			}
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			mapping, err := svc.reviewService().ManualMap(cmd.Context(), args[0], catalogID)
			if err != nil {
				return notFoundHint(err, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mapped post %s to %s (catalog id %d)\n",
				shortID(mapping.PostID), mapping.MatchedTitle, mapping.CatalogID)
			return nil
		},
	}
}

func newReviewClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all pending posts, mappings, and failed mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to clear migration data without --yes")
			}
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			if err := svc.reviewService().ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All migration data cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deletion")
	return cmd
}

func notFoundHint(err error, postID string) error {
	if !errors.Is(err, review.ErrNotFound) {
		return err
	}
	var nf *store.NotFoundError
	if errors.As(err, &nf) && nf.Collection == "catalog" {
		return fmt.Errorf("%w; search with `filmwallaa catalog search`", err)
	}
	return fmt.Errorf("%w; list pending posts with `filmwallaa review list` (post %s)", err, postID)
}

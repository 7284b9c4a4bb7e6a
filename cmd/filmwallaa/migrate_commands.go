package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"filmwallaa/internal/logging"
	"filmwallaa/internal/migration"
	"filmwallaa/internal/store"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run and inspect export migrations",
	}
	migrateCmd.AddCommand(newMigrateRunCommand(ctx))
	migrateCmd.AddCommand(newMigrateStatusCommand(ctx))
	return migrateCmd
}

func newMigrateRunCommand(ctx *commandContext) *cobra.Command {
	var exportPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Migrate the WordPress export into the pending review set",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			source := strings.TrimSpace(exportPath)
			if source == "" {
				source = svc.cfg.Paths.ExportPath
			}
			if source == "" {
				return errors.New("no export file given; pass --export or set paths.export_path")
			}

			migrator, err := svc.migrator()
			if err != nil {
				return err
			}
			launcher, err := migration.NewLauncher(migrator, svc.cfg.LockPath(), svc.logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := launcher.Start(runCtx, source); err != nil {
				return err
			}
			report, runErr := launcher.Wait(context.WithoutCancel(runCtx))

			if err := svc.metrics.WriteTextfile(svc.cfg.Paths.MetricsTextfile); err != nil {
				logging.WarnWithHint(svc.logger, "metrics textfile not written", "metrics_textfile",
					"check paths.metrics_textfile is writable", logging.Error(err))
			}

			if report != nil {
				if asJSON {
					if err := writeJSON(cmd, report); err != nil {
						return err
					}
				} else {
					printReport(cmd.OutOrStdout(), report)
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&exportPath, "export", "e", "", "WordPress export file (defaults to paths.export_path)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printReport(out io.Writer, report *migration.Report) {
	fmt.Fprintf(out, "Run %s: %s in %s\n", shortID(report.RunID), report.Status, report.Duration.Round(time.Millisecond))
	if report.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", report.Error)
	}
	if !report.Succeeded() {
		return
	}

	rows := [][]string{
		{"Export items", strconv.Itoa(report.ExportItems)},
		{"Posts migrated", strconv.Itoa(report.TotalPosts)},
		{"Mapped", strconv.Itoa(report.Mapped)},
		{"Failed", strconv.Itoa(report.Failed)},
		{"Success rate", fmt.Sprintf("%.1f%%", report.SuccessRate)},
		{"With ratings", strconv.Itoa(report.WithRatings)},
		{"Skipped (existing)", strconv.Itoa(report.SkippedExisting)},
	}
	fmt.Fprintln(out, renderTable(out, []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	if years := report.Years(); len(years) > 0 {
		yearRows := make([][]string, 0, len(years))
		for _, year := range years {
			yearRows = append(yearRows, []string{strconv.Itoa(year), strconv.Itoa(report.PostsByYear[year])})
		}
		fmt.Fprintln(out, renderTable(out, []string{"Year", "Posts"}, yearRows, []columnAlignment{alignLeft, alignRight}))
	}

	if len(report.FailedPreview) > 0 {
		fmt.Fprintln(out, "Failed mappings (preview):")
		fmt.Fprintln(out, renderFailed(out, report.FailedPreview))
	}
}

func renderFailed(out io.Writer, failed []*store.FailedMapping) string {
	rows := make([][]string, 0, len(failed))
	for _, f := range failed {
		rows = append(rows, []string{shortID(f.PostID), truncate(f.PostTitle, 48), f.Query, f.Reason})
	}
	return renderTable(out, []string{"Post", "Title", "Query", "Reason"}, rows, nil)
}

type migrationStatus struct {
	Running  bool         `json:"running"`
	LockFile string       `json:"lock_file"`
	Database string       `json:"database"`
	Counts   store.Counts `json:"counts"`
}

func newMigrateStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show collection counts and whether a run is in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureServices()
			if err != nil {
				return err
			}
			running, err := migration.LockHeld(svc.cfg.LockPath())
			if err != nil {
				return err
			}
			counts, err := svc.store.Counts(cmd.Context())
			if err != nil {
				return err
			}
			status := migrationStatus{
				Running:  running,
				LockFile: svc.cfg.LockPath(),
				Database: svc.store.Path(),
				Counts:   counts,
			}
			if asJSON {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run in progress: %s\n", yesNo(status.Running))
			fmt.Fprintf(out, "Database: %s\n", status.Database)
			rows := [][]string{
				{"Pending", strconv.Itoa(counts.Pending)},
				{"Rejected", strconv.Itoa(counts.Rejected)},
				{"Mappings", strconv.Itoa(counts.Mappings)},
				{"Failed mappings", strconv.Itoa(counts.Failed)},
				{"Published", strconv.Itoa(counts.Published)},
				{"Movies", strconv.Itoa(counts.Movies)},
			}
			fmt.Fprintln(out, renderTable(out, []string{"Collection", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	return cmd
}

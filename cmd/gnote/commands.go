package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/FSlyne/gnote/internal/dashboard"
	"github.com/FSlyne/gnote/internal/parser"
	"github.com/FSlyne/gnote/internal/pipeline"
	"github.com/FSlyne/gnote/internal/scanner"
	"github.com/FSlyne/gnote/internal/source"
	"github.com/FSlyne/gnote/internal/stats"
	"github.com/FSlyne/gnote/internal/store"
	"github.com/FSlyne/gnote/internal/tagindex"
	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [file]",
		Short: "Scan one document and print its items as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, name := filepath.Split(args[0])
			if dir == "" {
				dir = "."
			}
			src := source.NewDir(dir, parser.Options{})
			ctx := cmd.Context()
			doc, err := src.FetchDocument(ctx, name)
			if err != nil {
				return err
			}
			comments, err := src.FetchComments(ctx, name)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), scanner.Scan(doc, comments))
		},
	}
}

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags [dir]",
		Short: "Build a tag index over every document under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger(cmd)
			src := source.NewDir(args[0], parser.Options{})
			ctx := cmd.Context()
			ids, err := src.List(ctx)
			if err != nil {
				return err
			}
			corpus := make(map[string][]scanner.Item, len(ids))
			for _, id := range ids {
				doc, err := src.FetchDocument(ctx, id)
				if err != nil {
					log.Warn("skipping document", "doc_id", id, "error", err)
					continue
				}
				comments, err := src.FetchComments(ctx, id)
				if err != nil {
					log.Warn("skipping comments", "doc_id", id, "error", err)
				}
				corpus[id] = scanner.Scan(doc, comments).Items
			}
			idx := tagindex.Build(corpus)

			filter, _ := cmd.Flags().GetStringSlice("filter")
			if len(filter) > 0 {
				return printJSON(cmd.OutOrStdout(), idx.Filter(filter...))
			}
			return printJSON(cmd.OutOrStdout(), idx.Map())
		},
	}
	cmd.Flags().StringSliceP("filter", "f", nil, "Only list documents carrying all of these tags")
	return cmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [dir]",
		Short: "Scan every document under a directory and sync it to the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dbPath, _ := cmd.Flags().GetString("db")
			workers, _ := cmd.Flags().GetInt("workers")
			db, err := store.OpenSQLite(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			src := source.NewDir(args[0], parser.Options{})
			latency := stats.NewRecorder(time.Hour)
			orch := pipeline.NewOrchestrator(pipeline.Options{WorkerCount: workers, MaxQueueSize: 10000}, src, db, latency, logger(cmd))
			orch.Start(ctx)
			defer orch.Stop()

			jobs, err := orch.Refresh(ctx)
			if err != nil {
				return err
			}
			failed := 0
			for _, job := range jobs {
				if err := waitJob(ctx, job); err != nil {
					return err
				}
				snap := job.Snapshot()
				if snap.Status == pipeline.StatusFailed {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", snap.DocID, strings.Join(snap.Progress.Errors, "; "))
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d documents (%d failed)\n", len(jobs)-failed, failed)
			if failed > 0 {
				return fmt.Errorf("%d documents failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "./data/gnote.sqlite", "SQLite database path")
	cmd.Flags().IntP("workers", "w", 4, "Concurrent documents")
	return cmd
}

func waitJob(ctx context.Context, job *pipeline.Job) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for !job.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "List synced tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dbPath, _ := cmd.Flags().GetString("db")
			statusFlag, _ := cmd.Flags().GetString("status")
			sortFlag, _ := cmd.Flags().GetString("sort")
			asJSON, _ := cmd.Flags().GetBool("json")

			status, err := dashboard.ParseStatusFilter(statusFlag)
			if err != nil {
				return err
			}
			sortKey, err := dashboard.ParseSortKey(sortFlag)
			if err != nil {
				return err
			}
			db, err := store.OpenSQLite(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			rows, err := db.TaskRows(ctx)
			if err != nil {
				return err
			}
			view := dashboard.Aggregate(rows, dashboard.Query{Status: status, Sort: sortKey})
			if asJSON {
				return printJSON(cmd.OutOrStdout(), view)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STATUS\tCREATED\tCLOSED\tDOCUMENT\tTASK")
			for _, r := range view.Rows {
				closed := "-"
				if r.ClosedAt != nil {
					closed = r.ClosedAt.Local().Format(time.DateTime)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Status, r.CreatedAt.Local().Format(time.DateTime), closed, r.DocumentID, r.Content)
			}
			fmt.Fprintf(tw, "\n%d tasks\n", view.Count)
			return tw.Flush()
		},
	}
	cmd.Flags().String("db", "./data/gnote.sqlite", "SQLite database path")
	cmd.Flags().String("status", "all", "all, open or closed")
	cmd.Flags().String("sort", "newest", "newest, oldest or recently_closed")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

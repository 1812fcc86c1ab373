package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"ragquiz/internal/ingest"
	"ragquiz/internal/logx"
	"ragquiz/internal/service"
	"ragquiz/internal/watcher"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Index note files, directories or glob patterns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := app.Ingest(ctx, args)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents as %d chunks.\n\n%s\n", res.Documents, res.Chunks, res.Summary)

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return watchAndReingest(ctx, app, args)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolP("watch", "w", false, "Keep running and re-index when notes change")
}

func watchAndReingest(ctx context.Context, app *service.App, paths []string) error {
	w, err := watcher.New(0)
	if err != nil {
		return err
	}
	defer w.Close()

	changes, err := w.Watch(ctx, watchDirs(paths)...)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	logx.Infof("watching for changes, Ctrl+C to stop")
	for batch := range changes {
		logx.Infof("%d note(s) changed, re-indexing", len(batch))
		res, err := app.Ingest(ctx, paths)
		switch {
		case errors.Is(err, ingest.ErrNoDocuments):
			logx.Warnf("re-index skipped: %v", err)
		case err != nil:
			logx.Warnf("re-index failed: %v", err)
		default:
			logx.Infof("re-indexed %d documents as %d chunks", res.Documents, res.Chunks)
		}
	}
	return nil
}

// watchDirs maps ingest arguments onto the directories that hold them.
func watchDirs(paths []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if len(matches) == 0 {
			matches = []string{p}
		}
		for _, m := range matches {
			dir := m
			if info, err := os.Stat(m); err != nil || !info.IsDir() {
				dir = filepath.Dir(m)
			}
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

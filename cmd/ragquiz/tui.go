package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragquiz/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [path...]",
	Short: "Interactive tutor and quiz in the terminal",
	Long:  "Start the terminal tutor. Paths given are indexed first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		summary := "Using the existing index."
		if len(args) > 0 {
			res, err := app.Ingest(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
			summary = fmt.Sprintf("%d documents, %d chunks. %s", res.Documents, res.Chunks, res.Summary)
		}

		m := tui.New(app, summary, app.Config.Answer.DefaultK, app.DefaultItems())
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ragquiz/internal/export"
)

var quizCmd = &cobra.Command{
	Use:   "quiz [topic]",
	Short: "Generate a quiz about a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		n, _ := cmd.Flags().GetInt("n")
		var seed *uint64
		if cmd.Flags().Changed("seed") {
			s, _ := cmd.Flags().GetUint64("seed")
			seed = &s
		}
		q, err := app.GenerateQuiz(cmd.Context(), strings.Join(args, " "), n, seed)
		if err != nil {
			return err
		}
		if len(q.Items) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "No quiz items could be generated for %q. Ingest more notes or try another topic.\n", q.Topic)
		}

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := printJSON(f, q); err != nil {
				return err
			}
		} else if err := printJSON(cmd.OutOrStdout(), q); err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("pdf"); path != "" {
			data, err := export.QuizPDF(q)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Worksheet written to %s\n", path)
		}
		return nil
	},
}

func init() {
	quizCmd.Flags().IntP("n", "n", 0, "Number of items (default from config)")
	quizCmd.Flags().Uint64("seed", 0, "Seed for reproducible quizzes")
	quizCmd.Flags().StringP("out", "o", "", "Write the quiz JSON to a file instead of stdout")
	quizCmd.Flags().String("pdf", "", "Also write a printable worksheet PDF")
}

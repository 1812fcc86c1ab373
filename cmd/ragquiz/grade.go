package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragquiz/internal/export"
	"ragquiz/internal/grader"
	"ragquiz/internal/quiz"
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade responses against a quiz",
	Long:  "Grade a JSON array of responses against a quiz file (--quiz) or a stored quiz (--id).",
	RunE: func(cmd *cobra.Command, args []string) error {
		quizPath, _ := cmd.Flags().GetString("quiz")
		id, _ := cmd.Flags().GetString("id")
		respPath, _ := cmd.Flags().GetString("responses")
		if (quizPath == "") == (id == "") {
			return errors.New("exactly one of --quiz or --id is required")
		}

		raw, err := os.ReadFile(respPath)
		if err != nil {
			return fmt.Errorf("read responses: %w", err)
		}
		var responses []any
		if err := json.Unmarshal(raw, &responses); err != nil {
			return fmt.Errorf("responses must be a JSON array: %w", err)
		}

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var q quiz.Quiz
		var res grader.Result
		if id != "" {
			q, res, err = app.GradeQuiz(cmd.Context(), id, responses)
		} else {
			data, rerr := os.ReadFile(quizPath)
			if rerr != nil {
				return fmt.Errorf("read quiz: %w", rerr)
			}
			if q, err = quiz.Decode(data); err != nil {
				return err
			}
			res, err = app.Grade(cmd.Context(), q.Items, responses)
		}
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("pdf"); path != "" {
			data, err := export.ResultPDF(q, res)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
		}
		return nil
	},
}

func init() {
	gradeCmd.Flags().String("quiz", "", "Quiz JSON file")
	gradeCmd.Flags().String("id", "", "Id of a stored quiz")
	gradeCmd.Flags().StringP("responses", "r", "", "JSON array of responses, one per item")
	gradeCmd.Flags().String("pdf", "", "Also write a graded report PDF")
	_ = gradeCmd.MarkFlagRequired("responses")
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		k, _ := cmd.Flags().GetInt("k")
		a := app.Ask(cmd.Context(), strings.Join(args, " "), k)
		fmt.Fprintln(cmd.OutOrStdout(), a.Text)
		return nil
	},
}

func init() {
	askCmd.Flags().IntP("k", "k", 4, "Number of chunks to draw sentences from")
}

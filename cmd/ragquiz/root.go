package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ragquiz/internal/config"
	"ragquiz/internal/logx"
	"ragquiz/internal/service"
)

var rootCmd = &cobra.Command{
	Use:           "ragquiz",
	Short:         "Quiz and tutor from your own notes",
	Long:          "ragquiz indexes local notes and generates, grades and explains quizzes grounded in them, without a language model.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		v, _ := cmd.Flags().GetBool("verbose")
		logx.SetVerbose(v)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides RAGQUIZ_CONFIG; defaults to ./config.yaml or ~/.config/ragquiz/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig resolves the config using --config (highest priority), then
// RAGQUIZ_CONFIG, then the default search path.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("RAGQUIZ_CONFIG")
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		return cfg, nil
	}
	cfg, used, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logx.Debugf("using config %s", used)
	return cfg, nil
}

func openApp(cmd *cobra.Command) (*service.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return service.Open(cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

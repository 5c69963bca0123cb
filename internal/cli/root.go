// Package cli implements the starfront command line.
package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/starfront/starfront/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "starfront",
	Short: "Reward and progression ledger for the starfront game",
	Long: `starfront owns a pilot's credits, uridium, honor and experience.
It applies gameplay reward events, derives rank from honor and level from
experience, and serves the ledger over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config.toml (defaults + STARFRONT_* env when empty)")
	rootCmd.PersistentFlags().String("lang", "en", "Language tag for number formatting")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command) (daemon.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return daemon.LoadConfig(path)
}

func loadTuning(cfg daemon.Config) (daemon.Tuning, error) {
	if cfg.Ledger.Tuning == "" {
		return daemon.Tuning{}, nil
	}
	return daemon.LoadTuning(cfg.Ledger.Tuning)
}

// printer formats numbers for the --lang locale, falling back to English.
func printer(cmd *cobra.Command) *message.Printer {
	lang, _ := cmd.Flags().GetString("lang")
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

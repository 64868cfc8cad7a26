package cmd

import (
	"github.com/phanxgames/ripple"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ripple",
	Short: "Scroll-driven page with a waving ribbon, a spinning can and a looping marquee",
	Long: `ripple renders a scrolling promo page: a procedurally waving ribbon,
an object choreographed by scroll position, and text looping along curves.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML page config (defaults built in)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig returns the --config file layered over the defaults, or the
// defaults alone.
func loadConfig() (ripple.Config, error) {
	if configPath == "" {
		cfg := ripple.DefaultConfig()
		return cfg, cfg.Validate()
	}
	return ripple.LoadConfig(configPath)
}

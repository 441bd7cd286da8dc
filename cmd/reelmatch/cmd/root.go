package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hubenschmidt/reelmatch/config"
	"github.com/hubenschmidt/reelmatch/logging"
)

var (
	configPath string
	logLevel   string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reelmatch",
	Short: "reelmatch: content-based movie recommendations",
	Long: "Suggests movies similar to a title you like, using TF-IDF over genres, " +
		"keywords, tagline, cast and director.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("reelmatch failed")
	}
	return err
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	logging.Init(logging.Config{Level: c.Log.Level, Format: c.Log.Format})
	cfg = c
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(precomputeCmd)
	rootCmd.AddCommand(recommendCmd)
}

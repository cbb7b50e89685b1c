package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/inamate/figconv/internal/config"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "figconv",
		Short: "Convert design scene exports to HTML or page blocks",
		Long: `figconv turns a design tool's node tree export (JSON or YAML) into
either self-contained HTML/CSS or a block/element page model.

Settings come from the same environment variables as the server
(EXPORT_DELAY, MAX_CONCURRENCY, GRADIENT_WIDTH, ...); flags override them.`,
		Example: `  figconv convert --mode html --out site/ card.json
  figconv convert --mode blocks --root 1:7 card.yaml
  figconv classify card.json
  figconv gradient "linear-gradient(90deg, #f00, #00f)" --out g.png`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			*cfg = *loaded

			level := cfg.Level()
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output, including icon decisions")

	rootCmd.AddCommand(newConvertCommand(cfg))
	rootCmd.AddCommand(newNormalizeCommand())
	rootCmd.AddCommand(newClassifyCommand())
	rootCmd.AddCommand(newGradientCommand(cfg))
	rootCmd.AddCommand(newTokenCommand(cfg))
	rootCmd.AddCommand(newSampleCommand())

	return rootCmd
}

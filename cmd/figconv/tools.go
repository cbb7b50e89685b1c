package main

import (
	"encoding/json"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/inamate/figconv/internal/asset"
	"github.com/inamate/figconv/internal/auth"
	"github.com/inamate/figconv/internal/config"
	"github.com/inamate/figconv/internal/document"
)

func newGradientCommand(cfg *config.Config) *cobra.Command {
	var (
		out           string
		width, height int
	)

	cmd := &cobra.Command{
		Use:   `gradient [flags] "<linear-gradient(...)>"`,
		Short: "Rasterize a CSS linear gradient to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 {
				width = cfg.GradientWidth
			}
			if height <= 0 {
				height = cfg.GradientHeight
			}

			g, err := asset.ParseLinearGradient(args[0])
			if err != nil {
				return err
			}
			img, err := g.Render(width, height)
			if err != nil {
				return err
			}

			if out == "" {
				url, err := asset.PNGDataURL(img)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			}
			if err := imaging.Save(img, out); err != nil {
				return fmt.Errorf("save gradient: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "PNG file to write (default: print a data URL)")
	cmd.Flags().IntVar(&width, "width", 0, "image width (default GRADIENT_WIDTH)")
	cmd.Flags().IntVar(&height, "height", 0, "image height (default GRADIENT_HEIGHT)")

	return cmd
}

func newTokenCommand(cfg *config.Config) *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				apiKey = cfg.APIKey
			}
			res, err := auth.NewService(cfg.JWTSecret, cfg.APIKey).IssueToken(apiKey)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key to present (default API_KEY)")

	return cmd
}

func newSampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print the built-in sample document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(document.NewSampleDocument())
		},
	}
}

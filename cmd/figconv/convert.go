package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/inamate/figconv/internal/config"
	"github.com/inamate/figconv/internal/convert"
	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/icon"
	"github.com/inamate/figconv/internal/normalize"
)

func newConvertCommand(cfg *config.Config) *cobra.Command {
	var (
		mode      string
		root      string
		outDir    string
		classMode bool
	)

	cmd := &cobra.Command{
		Use:   "convert [flags] <file1> [file2...]",
		Short: "Convert scene documents",
		Long: `Convert one or more scene documents. With --out, each input writes
<name>.html (plus <name>.css in class mode) or <name>.json for blocks;
otherwise results go to stdout. Every file is attempted; the command fails
if any of them did.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := convert.ParseMode(mode)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("class-mode") {
				cfg.ClassMode = classMode
			}

			converter := convert.New(
				convert.WithExportDelay(cfg.ExportDelay),
				convert.WithMaxConcurrency(cfg.MaxConcurrency),
				convert.WithClassMode(cfg.ClassMode),
				convert.WithGradients(convert.NewLocalGradients(cfg.GradientWidth, cfg.GradientHeight)),
			)

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}

			var errs error
			for _, file := range args {
				if err := convertFile(cmd.Context(), converter, file, m, root, outDir, cmd.OutOrStdout()); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("%s: %w", file, err))
				}
			}
			return errs
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(convert.ModeHTML), "output mode: html or blocks")
	cmd.Flags().StringVar(&root, "root", "", "node id to convert (default: first selected node, then the document root)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write results into")
	cmd.Flags().BoolVar(&classMode, "class-mode", false, "emit class-based CSS instead of inline styles")

	return cmd
}

func convertFile(ctx context.Context, c *convert.Converter, file string, mode convert.Mode, root, outDir string, stdout io.Writer) error {
	doc, err := readDocument(file)
	if err != nil {
		return err
	}

	res, err := c.Convert(ctx, convert.Request{Document: doc, RootID: root, Mode: mode})
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	if mode == convert.ModeHTML {
		if outDir == "" {
			_, err := io.WriteString(stdout, res.Markup.HTML+"\n")
			if err == nil && res.Markup.CSS != "" {
				_, err = io.WriteString(stdout, "<style>\n"+res.Markup.CSS+"</style>\n")
			}
			return err
		}
		if err := os.WriteFile(filepath.Join(outDir, base+".html"), []byte(res.Markup.HTML), 0o644); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
		if res.Markup.CSS != "" {
			if err := os.WriteFile(filepath.Join(outDir, base+".css"), []byte(res.Markup.CSS), 0o644); err != nil {
				return fmt.Errorf("write css: %w", err)
			}
		}
		return nil
	}

	data, err := json.MarshalIndent(res.Payload(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}
	if outDir == "" {
		_, err := stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, base+".json"), data, 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}

func readDocument(file string) (*document.Document, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return document.Read(f)
}

func docRoot(doc *document.Document, id string) (*document.RawNode, error) {
	return convert.Request{Document: doc, RootID: id}.Root()
}

func newNormalizeCommand() *cobra.Command {
	var (
		root   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "normalize [flags] <file>",
		Short: "Print the normalized node tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			raw, err := docRoot(doc, root)
			if err != nil {
				return err
			}
			n, err := normalize.New().Normalize(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(n)
			case "yaml":
				// Round-trip through JSON so the YAML keys match the JSON tags.
				data, err := json.Marshal(n)
				if err != nil {
					return err
				}
				var v any
				if err := yaml.Unmarshal(data, &v); err != nil {
					return err
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(v)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "node id to normalize")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")

	return cmd
}

func newClassifyCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "classify [flags] <file>",
		Short: "Show which nodes are treated as icons and why",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			raw, err := docRoot(doc, root)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tICON\tREASON")
			classifier := func(c icon.Candidate) bool {
				ok, reason := icon.Classify(c)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", c.Node.ID, c.Node.Name, c.Node.Type, ok, reason)
				return ok
			}
			if _, err := normalize.New(normalize.WithClassifier(classifier)).Normalize(raw); err != nil {
				return err
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "node id to classify from")

	return cmd
}

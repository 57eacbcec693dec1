package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/contextcraft/internal/document"
	"github.com/ppiankov/contextcraft/internal/model"
	"github.com/ppiankov/contextcraft/internal/pipeline"
	"github.com/ppiankov/contextcraft/internal/report"
)

var (
	rwFlags rewriteFlags
	outJSON string
	outMD   string
	outText string
)

// rewriteCmd represents the rewrite command
var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file|url|->",
	Short: "Rewrite one document for a target audience",
	Long: `Rewrite parses a Markdown or HTML document into headings and paragraphs,
rewrites each chunk for the chosen audience and validates that every
factual anchor survived.

Chunks whose rewrite cannot be validated are left unchanged.

Example:
  contextcraft rewrite launch.md --profile enterprise
  contextcraft rewrite https://example.com/post --format html --json report.json
  cat notes.md | contextcraft rewrite - --strength aggressive --out rewritten.md`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rootCmd.AddCommand(rewriteCmd)

	rwFlags.register(rewriteCmd.Flags(), 5*time.Minute)

	// Output flags
	rewriteCmd.Flags().StringVar(&outJSON, "json", "", "output JSON report path (- for stdout)")
	rewriteCmd.Flags().StringVar(&outMD, "md", "", "output Markdown report path (- for stdout)")
	rewriteCmd.Flags().StringVar(&outText, "out", "-", "output path for the transformed document (- for stdout)")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	source := args[0]

	profileID, err := model.ParseProfileID(rwFlags.profile)
	if err != nil {
		return err
	}
	strength := model.ParseStrength(rwFlags.strength)
	format, err := document.ParseFormat(rwFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	rwFlags.apply(cmd, cfg)

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), rwFlags.timeout)
	defer cancel()

	if cfg.Output.Verbose || verbose {
		fmt.Fprintf(os.Stderr, "Rewriting: %s\n", source)
		fmt.Fprintf(os.Stderr, "Profile: %s, strength: %s\n", profileID, strength)
		fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	rep, err := p.TransformSource(ctx, source, profileID, strength, format, cfg.Output.Debug)
	if err != nil {
		return fmt.Errorf("rewrite failed: %w", err)
	}

	report.RenderSummary(os.Stderr, rep)

	// Render outputs
	if outJSON != "" {
		if err := report.RenderJSON(rep, outJSON); err != nil {
			return err
		}
	}
	if outMD != "" {
		if err := report.RenderMarkdown(rep, outMD); err != nil {
			return err
		}
	}
	if outText != "" {
		if err := report.RenderTransformed(rep, outText); err != nil {
			return err
		}
	}

	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/contextcraft/internal/document"
	"github.com/ppiankov/contextcraft/internal/model"
	"github.com/ppiankov/contextcraft/internal/pipeline"
	"github.com/ppiankov/contextcraft/internal/worker"
)

var (
	batchFlags rewriteFlags
	workers    int
	outputDir  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Rewrite multiple documents from a list file in parallel",
	Long: `Batch processes multiple documents concurrently:
- Read file paths or URLs from the input file (one per line, # for comments)
- Rewrite documents in parallel with a configurable worker count
- LLM calls across all documents share one concurrency limit
- Write a JSON report and the transformed document for each input

Example:
  contextcraft batch docs.txt --profile startup
  contextcraft batch docs.txt --workers 8 --output-dir ./rewrites
  contextcraft batch docs.txt --concurrency 2 --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "number of documents processed concurrently")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./contextcraft-output", "output directory for reports")

	batchFlags.register(batchCmd.Flags(), 30*time.Minute)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	profileID, err := model.ParseProfileID(batchFlags.profile)
	if err != nil {
		return err
	}
	format, err := document.ParseFormat(batchFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	batchFlags.apply(cmd, cfg)

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchFlags.timeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  ContextCraft Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Profile:      %s\n", profileID)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  LLM calls:    %d in flight\n", cfg.Rewrite.Concurrency)
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchFlags.timeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, workers, worker.Options{
		Profile:   profileID,
		Strength:  model.ParseStrength(batchFlags.strength),
		Format:    format,
		Debug:     cfg.Output.Debug,
		OutputDir: outputDir,
	})

	fmt.Fprintf(os.Stderr, "⚙️  Processing documents with %d workers...\n\n", workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	fallbackCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		successCount++
		if result.Report.Validation.FidelityScore != 1 {
			fallbackCount++
		}
		fmt.Fprintf(os.Stderr, "✓ %s → %s.md (fidelity: %d)\n", result.Source, result.OutputPath, result.Report.Validation.FidelityScore)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:       %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:     %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Fallbacks:   %d (some chunks kept original text)\n", fallbackCount)
	fmt.Fprintf(os.Stderr, "  Failures:    %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:      %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d documents failed", failureCount, len(results))
	}
	return nil
}

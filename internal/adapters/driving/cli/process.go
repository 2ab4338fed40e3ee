package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
)

var processCmd = &cobra.Command{
	Use:   "process [doc-id]",
	Short: "Run the interpretation pipeline",
	Long: `Runs the full pipeline for a document: chunking, domain
classification, example retrieval, graph building and validation.
The resulting graph is committed as a new version.

With --all, every document awaiting processing runs, in parallel up
to the configured bound.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

// processAll selects every document awaiting processing.
var processAll bool

func init() {
	processCmd.Flags().BoolVarP(&processAll, "all", "a", false, "Process all documents awaiting processing")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	ctx := context.Background()

	if processAll {
		if len(args) > 0 {
			return errors.New("cannot combine --all with a document ID")
		}
		return runProcessAll(ctx, cmd)
	}

	if len(args) == 0 {
		return errors.New("document ID required (or use --all)")
	}
	docID := args[0]

	cmd.Printf("Processing document %s...\n", docID)

	result, err := processWithProgress(ctx, cmd, docID)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, result)
	}

	printResult(cmd, result)
	return nil
}

func runProcessAll(ctx context.Context, cmd *cobra.Command) error {
	results, err := pipelineService.ProcessAll(ctx)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	if len(results) == 0 {
		cmd.Println("No documents awaiting processing.")
		return nil
	}

	if jsonOutput {
		return printJSON(cmd, results)
	}

	failed := 0
	for i := range results {
		if results[i].Err != nil {
			cmd.Printf("%s: failed: %v\n", results[i].DocID, results[i].Err)
			failed++
			continue
		}
		printResult(cmd, &results[i])
	}
	cmd.Printf("Processed %d documents (%d failed).\n", len(results), failed)
	return nil
}

// processWithProgress runs the pipeline while displaying chunk progress.
func processWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	docID string,
) (*driving.PipelineResult, error) {
	// Run the pipeline in a goroutine
	type outcome struct {
		result *driving.PipelineResult
		err    error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		result, err := pipelineService.Process(ctx, docID)
		resultCh <- outcome{result, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case out := <-resultCh:
			if lastCount > 0 {
				cmd.Println()
			}
			return out.result, out.err
		case <-ticker.C:
			// Check progress (ignore status error - best effort)
			status, statusErr := pipelineService.Status(ctx, docID)
			if statusErr == nil && status != nil && status.ChunkCount > lastCount {
				cmd.Printf("\rChunked %d segments", status.ChunkCount)
				lastCount = status.ChunkCount
			}
		}
	}
}

// printResult summarises one pipeline run for human output.
func printResult(cmd *cobra.Command, result *driving.PipelineResult) {
	if result.AwaitingClarification {
		cmd.Printf("%s: awaiting clarification\n", result.DocID)
		cmd.Printf("Run 'orbit clarify %s' to see the open questions.\n", result.DocID)
		return
	}

	cmd.Printf("%s: graph version %d committed (validation: %s)\n",
		result.DocID, result.Version, result.ValidationStatus)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/adapters/driven/watch"
)

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Manage the retrieval example corpus",
	Long: `The example corpus pairs past document excerpts with their
structured interpretation. Retrieval feeds the closest examples to the
graph builder as few-shot guidance; a richer corpus means better graphs.`,
}

var examplesAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Load examples from a corpus JSON file",
	Long: `Loads a JSON file of examples, appends the unseen ones to the
corpus and rebuilds the retrieval index. Each entry carries a domain
label, a text excerpt and the structured output JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runExamplesAdd,
}

var examplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored examples",
	RunE:  runExamplesList,
}

var examplesReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the retrieval index from the corpus",
	RunE:  runExamplesReindex,
}

var examplesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory for corpus files",
	Long: `Watches a directory for .json corpus files and folds new or
changed files into the corpus with a debounced reindex. Runs in the
foreground until interrupted.`,
	RunE: runExamplesWatch,
}

// examplesWatchDir overrides the corpus directory from settings.
var examplesWatchDir string

func init() {
	examplesWatchCmd.Flags().StringVarP(&examplesWatchDir, "dir", "d", "", "Corpus directory (defaults to the configured one)")

	examplesCmd.AddCommand(examplesAddCmd)
	examplesCmd.AddCommand(examplesListCmd)
	examplesCmd.AddCommand(examplesReindexCmd)
	examplesCmd.AddCommand(examplesWatchCmd)
	rootCmd.AddCommand(examplesCmd)
}

func runExamplesAdd(cmd *cobra.Command, args []string) error {
	if exampleService == nil {
		return errors.New("example service not configured")
	}

	path := args[0]
	ctx := context.Background()

	added, err := exampleService.AddFromFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	total, err := exampleService.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count examples: %w", err)
	}

	cmd.Printf("Added %d examples from %s (%d total).\n", added, path, total)
	return nil
}

func runExamplesList(cmd *cobra.Command, _ []string) error {
	if exampleService == nil {
		return errors.New("example service not configured")
	}

	ctx := context.Background()

	examples, err := exampleService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list examples: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, examples)
	}

	if len(examples) == 0 {
		cmd.Println("No examples. Load some with 'orbit examples add <file>'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOMAIN\tADDED\tEXCERPT")
	for i := range examples {
		e := &examples[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.ExampleID, e.Domain, e.AddedAt.Format("2006-01-02"), truncate(e.TextExcerpt, 60))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	cmd.Printf("\nTotal: %d examples\n", len(examples))
	return nil
}

func runExamplesReindex(cmd *cobra.Command, _ []string) error {
	if exampleService == nil {
		return errors.New("example service not configured")
	}

	ctx := context.Background()

	if err := exampleService.Reindex(ctx); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	count, err := exampleService.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count examples: %w", err)
	}

	cmd.Printf("Reindexed %d examples.\n", count)
	return nil
}

func runExamplesWatch(cmd *cobra.Command, _ []string) error {
	if exampleService == nil {
		return errors.New("example service not configured")
	}

	dir := examplesWatchDir
	if dir == "" && appSettings != nil {
		dir = appSettings.Storage.CorpusDir
	}
	if dir == "" {
		return errors.New("no corpus directory configured (use --dir or set storage.corpus_dir)")
	}

	watcher, err := watch.NewCorpusWatcher(watch.Config{Dir: dir}, exampleService)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best-effort cleanup on exit

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for corpus files. Press Ctrl-C to stop.\n", dir)

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

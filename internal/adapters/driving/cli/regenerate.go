package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate [doc-id]",
	Short: "Rebuild one section of the latest graph",
	Long: `Rebuilds a single section of the latest graph version under extra
instructions and commits the result as a new version. All other
sections are carried over unchanged; the previous version is kept.

Sections: summary, personas, modules, features, interactions,
functional, technical, non_functional, questions.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegenerate,
}

// Flags for the regenerate command.
var (
	regenerateSection      string
	regenerateInstructions string
)

func init() {
	regenerateCmd.Flags().StringVarP(&regenerateSection, "section", "s", "", "Graph section to rebuild (required)")
	regenerateCmd.Flags().StringVarP(&regenerateInstructions, "instructions", "i", "", "Extra instructions for the rebuild")
	_ = regenerateCmd.MarkFlagRequired("section")
	rootCmd.AddCommand(regenerateCmd)
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	if graphService == nil {
		return errors.New("graph service not configured")
	}

	docID := args[0]

	section, err := domain.ParseGraphSection(regenerateSection)
	if err != nil {
		return fmt.Errorf("unknown section %q (valid: %s)", regenerateSection, sectionList())
	}

	ctx := context.Background()

	cmd.Printf("Regenerating %s of document %s...\n", section, docID)

	graph, diff, err := graphService.Regenerate(ctx, docID, section, regenerateInstructions)
	if err != nil {
		if errors.Is(err, domain.ErrRegenerationInFlight) {
			return fmt.Errorf("document %s is already being regenerated, try again shortly", docID)
		}
		return fmt.Errorf("regeneration failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, diff)
	}

	cmd.Printf("Committed version %d (from version %d).\n", graph.Version, graph.ParentVersion)

	if diff.Empty() {
		cmd.Println("No visible change in the section.")
		return nil
	}
	if len(diff.Added) > 0 {
		cmd.Printf("  Added:   %s\n", strings.Join(diff.Added, ", "))
	}
	if len(diff.Removed) > 0 {
		cmd.Printf("  Removed: %s\n", strings.Join(diff.Removed, ", "))
	}
	for _, change := range diff.Changed {
		cmd.Printf("  Changed: %s\n", change.ID)
	}
	return nil
}

func sectionList() string {
	sections := domain.GraphSections()
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

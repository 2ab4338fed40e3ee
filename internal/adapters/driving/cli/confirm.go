package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm [doc-id]",
	Short: "Accept the latest graph version",
	Long: `Marks the latest graph version as accepted and moves the document
to ready_for_preprocessing, handing it off to downstream stages.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfirm,
}

func init() {
	rootCmd.AddCommand(confirmCmd)
}

func runConfirm(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := documentService.Confirm(ctx, docID); err != nil {
		if errors.Is(err, domain.ErrNoGraph) {
			return fmt.Errorf("document %s has no graph yet; run 'orbit process %s' first", docID, docID)
		}
		return fmt.Errorf("failed to confirm document: %w", err)
	}

	doc, err := documentService.Get(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Confirmed version %d of document %s (%s).\n", doc.ConfirmedVersion, docID, doc.Status)
	return nil
}

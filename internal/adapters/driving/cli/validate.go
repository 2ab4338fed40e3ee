package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate [doc-id]",
	Short: "Re-validate a graph version",
	Long: `Re-runs validation on a graph version and prints the report:
persona coverage, orphan features, near-duplicates, contradictions and
dangling references, with a confidence score. Validation describes the
graph; it never changes it.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

// validateVersion selects the graph version, 0 meaning the latest.
var validateVersion int

func init() {
	validateCmd.Flags().IntVar(&validateVersion, "version", 0, "Graph version (0 = latest)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if graphService == nil {
		return errors.New("graph service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	report, err := graphService.Validate(ctx, docID, validateVersion)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, report)
	}

	cmd.Printf("Validation report for %s (version %d)\n\n", docID, report.Version)
	cmd.Printf("  Status:     %s\n", report.Status)
	cmd.Printf("  Confidence: %.2f\n", report.ConfidenceScore)
	cmd.Printf("  Issues:     %d (%d high, %d medium, %d low)\n",
		len(report.Issues),
		report.CountBySeverity(domain.SeverityHigh),
		report.CountBySeverity(domain.SeverityMedium),
		report.CountBySeverity(domain.SeverityLow),
	)

	if len(report.Issues) == 0 {
		return nil
	}

	cmd.Println()
	for i := range report.Issues {
		issue := &report.Issues[i]
		cmd.Printf("  [%s] %s: %s\n", issue.Severity, issue.Type, issue.Summary)
		if issue.Recommendation != "" {
			cmd.Printf("      %s\n", issue.Recommendation)
		}
	}
	return nil
}

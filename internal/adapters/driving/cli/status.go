package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show document and pipeline status",
	Long: `Without arguments, lists all documents newest first. With a
document ID, shows the pipeline state: lifecycle status, classified
domain, chunk count, version chain and open clarifications.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()

	if len(args) == 0 {
		return runStatusList(ctx, cmd)
	}
	return runStatusDetail(ctx, cmd, args[0])
}

func runStatusList(ctx context.Context, cmd *cobra.Command) error {
	docs, err := documentService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents. Submit one with 'orbit submit <file>'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDOMAIN\tVERSION\tSUBMITTED")
	for i := range docs {
		doc := &docs[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			doc.ID,
			doc.Name,
			doc.Status,
			valueOrDash(doc.Domain),
			versionColumn(doc.LatestVersion),
			doc.SubmittedAt.Format("2006-01-02 15:04"),
		)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runStatusDetail(ctx context.Context, cmd *cobra.Command, docID string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	status, err := pipelineService.Status(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	doc, err := documentService.Get(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, status)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:      %s\n", doc.Name)
	cmd.Printf("  Status:    %s\n", status.Status)
	if doc.FailureReason != "" {
		cmd.Printf("  Failure:   %s\n", doc.FailureReason)
	}
	if status.Domain != "" {
		cmd.Printf("  Domain:    %s (confidence %.2f)\n", status.Domain, status.DomainConfidence)
	}
	cmd.Printf("  Chunks:    %d\n", status.ChunkCount)
	cmd.Printf("  Submitted: %s\n", doc.SubmittedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:   %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	if graphService != nil && status.LatestVersion > 0 {
		versions, err := graphService.ListVersions(ctx, docID)
		if err == nil && len(versions) > 0 {
			cmd.Printf("  Versions:  %s", joinVersions(versions))
			if doc.ConfirmedVersion > 0 {
				cmd.Printf(" (confirmed: v%d)", doc.ConfirmedVersion)
			}
			cmd.Println()
		}
	}

	if status.PendingClarifications > 0 {
		cmd.Printf("\n%d clarification(s) pending. Run 'orbit clarify %s' to answer them.\n",
			status.PendingClarifications, docID)
	}

	return nil
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func versionColumn(version int) string {
	if version == 0 {
		return "-"
	}
	return "v" + strconv.Itoa(version)
}

func joinVersions(versions []int) string {
	parts := make([]string, len(versions))
	for i, v := range versions {
		parts[i] = "v" + strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

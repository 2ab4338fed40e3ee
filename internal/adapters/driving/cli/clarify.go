package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

var clarifyCmd = &cobra.Command{
	Use:   "clarify [doc-id]",
	Short: "View and answer clarification questions",
	Long: `Documents with thin input park in awaiting_clarification with open
questions. Without flags, this lists them along with the assumption the
pipeline proceeds on if a question expires unanswered.

Answer with repeated --answer flags, then process the document again:

  orbit clarify doc-1 --answer clr-1="Admins and end users" --answer clr-2="Stripe"`,
	Args: cobra.ExactArgs(1),
	RunE: runClarify,
}

// clarifyAnswers holds id=answer pairs from repeated --answer flags.
var clarifyAnswers []string

func init() {
	clarifyCmd.Flags().StringArrayVar(&clarifyAnswers, "answer", nil, "Answer one question as id=text (repeatable)")
	rootCmd.AddCommand(clarifyCmd)
}

func runClarify(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if len(clarifyAnswers) > 0 {
		return runClarifyAnswer(ctx, cmd, docID)
	}

	clarifications, err := documentService.Clarifications(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to list clarifications: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, clarifications)
	}

	if len(clarifications) == 0 {
		cmd.Printf("No clarifications for document %s.\n", docID)
		return nil
	}

	pending := 0
	cmd.Printf("Clarifications for document %s:\n\n", docID)
	for i := range clarifications {
		c := &clarifications[i]
		cmd.Printf("  %s [%s]\n", c.ID, c.Status)
		cmd.Printf("    Question: %s\n", c.Question)
		if c.Answer != "" {
			cmd.Printf("    Answer: %s\n", c.Answer)
		} else if c.SuggestedAnswer != "" {
			cmd.Printf("    Assumption if unanswered: %s\n", c.SuggestedAnswer)
		}
		if c.Status == domain.ClarificationPending {
			cmd.Printf("    Expires: %s\n", c.ExpiresAt.Format("2006-01-02 15:04"))
			pending++
		}
		cmd.Println()
	}

	if pending > 0 {
		cmd.Printf("%d pending. Answer with --answer id=text, then run 'orbit process %s'.\n", pending, docID)
	}
	return nil
}

func runClarifyAnswer(ctx context.Context, cmd *cobra.Command, docID string) error {
	for _, pair := range clarifyAnswers {
		id, answer, ok := strings.Cut(pair, "=")
		if !ok || id == "" {
			return fmt.Errorf("invalid --answer %q: expected id=text", pair)
		}

		if err := documentService.AnswerClarification(ctx, docID, id, answer); err != nil {
			return fmt.Errorf("failed to answer %s: %w", id, err)
		}
		cmd.Printf("Answered %s.\n", id)
	}

	clarifications, err := documentService.Clarifications(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to list clarifications: %w", err)
	}

	pending := 0
	for i := range clarifications {
		if clarifications[i].Status == domain.ClarificationPending {
			pending++
		}
	}
	if pending > 0 {
		cmd.Printf("%d clarification(s) still pending.\n", pending)
	} else {
		cmd.Printf("All clarifications resolved. Run 'orbit process %s' to continue.\n", docID)
	}
	return nil
}

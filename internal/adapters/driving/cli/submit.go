package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/normalisers"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/normalisers/docx"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/normalisers/html"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/normalisers/markdown"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/normalisers/plaintext"
)

var submitCmd = &cobra.Command{
	Use:   "submit [file]",
	Short: "Submit a project document for interpretation",
	Long: `Reads a project document and registers it for pipeline processing.

Markdown, HTML and DOCX files are normalized to plain text; anything
else is read as-is. Submissions with too little usable text are
rejected; the error states how much more is needed. Run
'orbit process <doc-id>' afterwards to build the graph.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

// submitName overrides the document name derived from the file name.
var submitName string

// normaliserRegistry converts submitted files to plain text, selected
// by extension with plaintext as the fallback.
var normaliserRegistry = normalisers.NewRegistry(
	plaintext.New(),
	markdown.New(),
	html.New(),
	docx.New(),
)

func init() {
	submitCmd.Flags().StringVarP(&submitName, "name", "n", "", "Document name (defaults to the file name)")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctx := context.Background()

	text, err := normaliserRegistry.Normalise(ctx, path, content)
	if err != nil {
		return fmt.Errorf("failed to normalize %s: %w", path, err)
	}

	name := submitName
	if name == "" {
		name = filepath.Base(path)
	}

	doc, err := documentService.Submit(ctx, name, text)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientInput) {
			return fmt.Errorf("%w (add more detail and submit again)", err)
		}
		return fmt.Errorf("failed to submit document: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, doc)
	}

	cmd.Printf("Submitted %s as %s\n", name, doc.ID)
	cmd.Printf("Run 'orbit process %s' to build the requirement graph.\n", doc.ID)
	return nil
}

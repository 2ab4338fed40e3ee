package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetRegenerateFlags() {
	regenerateSection = ""
	regenerateInstructions = ""
	regenerateCmd.Flag("section").Changed = false
	regenerateCmd.Flag("instructions").Changed = false
}

func TestRegenerateCmd_Use(t *testing.T) {
	assert.Equal(t, "regenerate [doc-id]", regenerateCmd.Use)
}

func TestRegenerateCmd_RequiresSectionFlag(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"regenerate", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetRegenerateFlags()
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "section" not set`)
}

func TestRegenerateCmd_UnknownSection(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"regenerate", "doc-1", "--section", "paragraphs"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetRegenerateFlags()
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `unknown section "paragraphs"`)
	assert.Contains(t, err.Error(), "valid: summary, personas")
}

func TestRegenerateCmd_CommitsNewVersion(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)
	processTestDocument(t, doc.ID)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"regenerate", doc.ID, "--section", "features", "--instructions", "split booking into search and reserve"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetRegenerateFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Regenerating features of document "+doc.ID)
	assert.Contains(t, buf.String(), "Committed version 2 (from version 1).")
}

func TestRegenerateCmd_NoGraphYet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"regenerate", doc.ID, "--section", "summary"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetRegenerateFlags()
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "regeneration failed")
}

func TestRegenerateCmd_ServiceNotConfigured(t *testing.T) {
	oldService := graphService
	graphService = nil
	defer func() {
		graphService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"regenerate", "doc-1", "--section", "summary"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetRegenerateFlags()
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "graph service not configured")
}

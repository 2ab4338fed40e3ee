package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetExportFlags() {
	exportType = "csv"
	exportOut = ""
	exportVersion = 0
	exportList = false
	exportCmd.Flag("type").Changed = false
	exportCmd.Flag("out").Changed = false
	exportCmd.Flag("version").Changed = false
	exportCmd.Flag("list").Changed = false
}

func TestExportCmd_Use(t *testing.T) {
	assert.Equal(t, "export [doc-id]", exportCmd.Use)
}

func TestExportCmd_RequiresDocID(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"export"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestExportCmd_UnknownType(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"export", "doc-1", "--type", "pdf"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetExportFlags()
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `unknown export type "pdf"`)
	assert.Contains(t, err.Error(), "valid: csv, xlsx, markdown, html, json")
}

func TestExportCmd_WritesCSV(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)
	processTestDocument(t, doc.ID)
	out := filepath.Join(t.TempDir(), "scope.csv")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", doc.ID, "--out", out})
	defer func() {
		rootCmd.SetArgs(nil)
		resetExportFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Exported version 1 of "+doc.ID+" to "+out)
	assert.Contains(t, buf.String(), "Rows:")
	assert.Contains(t, buf.String(), "Checksum:")

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "Modules,Features,Interactions"))
}

func TestExportCmd_DeterministicOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)
	processTestDocument(t, doc.ID)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")

	for _, out := range []string{first, second} {
		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetArgs([]string{"export", doc.ID, "--out", out})
		err := rootCmd.Execute()
		rootCmd.SetArgs(nil)
		resetExportFlags()
		require.NoError(t, err)
	}

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExportCmd_MarkdownType(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)
	processTestDocument(t, doc.ID)
	out := filepath.Join(t.TempDir(), "scope.md")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", doc.ID, "--type", "markdown", "--out", out})
	defer func() {
		rootCmd.SetArgs(nil)
		resetExportFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	content, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "| Modules |")
}

func TestExportCmd_NoGraphYet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"export", doc.ID, "--out", filepath.Join(t.TempDir(), "scope.csv")})
	defer func() {
		rootCmd.SetArgs(nil)
		resetExportFlags()
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "export failed")
}

func TestExportCmd_ListEmpty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", doc.ID, "--list"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetExportFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No artifacts for document "+doc.ID)
}

func TestExportCmd_ListsArtifacts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)
	processTestDocument(t, doc.ID)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", doc.ID, "--out", filepath.Join(t.TempDir(), "scope.csv")})
	err := rootCmd.Execute()
	rootCmd.SetArgs(nil)
	resetExportFlags()
	require.NoError(t, err)

	buf.Reset()
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", doc.ID, "--list"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetExportFlags()
	}()

	err = rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "TYPE")
	assert.Contains(t, buf.String(), "csv")
	assert.Contains(t, buf.String(), "v1")
}

func TestExportCmd_ServiceNotConfigured(t *testing.T) {
	oldService := exportService
	exportService = nil
	defer func() {
		exportService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"export", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "export service not configured")
}

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessCmd_Use(t *testing.T) {
	assert.Equal(t, "process [doc-id]", processCmd.Use)
}

func TestProcessCmd_RequiresIDOrAll(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"process"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "document ID required")
}

func TestProcessCmd_RejectsAllWithID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"process", "--all", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		processAll = false
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot combine --all")
}

func TestProcessCmd_CommitsGraph(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"process", doc.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "graph version 1 committed")
}

func TestProcessCmd_ParksThinDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, thinDocumentText)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"process", doc.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "awaiting clarification")
	assert.Contains(t, buf.String(), "orbit clarify")
}

func TestProcessCmd_UnknownDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"process", "doc-missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestProcessCmd_All(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	submitTestDocument(t, richDocumentText)
	submitTestDocument(t, richDocumentText+" It must also integrate with the lab result system.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"process", "--all"})
	defer func() {
		rootCmd.SetArgs(nil)
		processAll = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Processed 2 documents (0 failed).")
}

func TestProcessCmd_AllEmpty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"process", "--all"})
	defer func() {
		rootCmd.SetArgs(nil)
		processAll = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No documents awaiting processing.")
}

func TestProcessCmd_ServiceNotConfigured(t *testing.T) {
	oldService := pipelineService
	pipelineService = nil
	defer func() {
		pipelineService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"process", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline service not configured")
}

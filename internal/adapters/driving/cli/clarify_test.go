package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClarifyCmd_Use(t *testing.T) {
	assert.Equal(t, "clarify [doc-id]", clarifyCmd.Use)
}

func TestClarifyCmd_RequiresDocID(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"clarify"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestClarifyCmd_NoClarifications(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc := submitTestDocument(t, richDocumentText)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"clarify", doc.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No clarifications for document "+doc.ID)
}

func TestClarifyCmd_ListsPendingQuestions(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc, clarifications := parkTestDocument(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"clarify", doc.ID})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Clarifications for document "+doc.ID)
	assert.Contains(t, out, clarifications[0].ID)
	assert.Contains(t, out, "[pending]")
	assert.Contains(t, out, "Question: "+clarifications[0].Question)
	assert.Contains(t, out, "Assumption if unanswered:")
	assert.Contains(t, out, "Expires:")
	assert.Contains(t, out, "pending. Answer with --answer id=text")
}

func TestClarifyCmd_AnswerInvalidFormat(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc, _ := parkTestDocument(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"clarify", doc.ID, "--answer", "no-separator"})
	defer func() {
		rootCmd.SetArgs(nil)
		clarifyAnswers = nil
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected id=text")
}

func TestClarifyCmd_AnswerUnknownID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc, _ := parkTestDocument(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"clarify", doc.ID, "--answer", "clr-bogus=whatever"})
	defer func() {
		rootCmd.SetArgs(nil)
		clarifyAnswers = nil
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to answer clr-bogus")
}

func TestClarifyCmd_AnswersOneQuestion(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc, clarifications := parkTestDocument(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"clarify", doc.ID, "--answer", clarifications[0].ID + "=Walkers and pet owners"})
	defer func() {
		rootCmd.SetArgs(nil)
		clarifyAnswers = nil
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Answered "+clarifications[0].ID+".")
	assert.Contains(t, buf.String(), "still pending")
}

func TestClarifyCmd_AnswersAllQuestions(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	doc, clarifications := parkTestDocument(t)

	args := []string{"clarify", doc.ID}
	for i := range clarifications {
		args = append(args, "--answer", clarifications[i].ID+"=Covered in the follow-up call")
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		clarifyAnswers = nil
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "All clarifications resolved. Run 'orbit process "+doc.ID+"'")
}

func TestClarifyCmd_ServiceNotConfigured(t *testing.T) {
	oldService := documentService
	documentService = nil
	defer func() {
		documentService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"clarify", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "document service not configured")
}

func TestClarifyCmd_ListServiceError(t *testing.T) {
	oldService := documentService
	documentService = &mockDocumentServiceError{}
	defer func() {
		documentService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"clarify", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list clarifications")
}

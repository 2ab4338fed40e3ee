package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/normalisers/docx"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/normalisers/html"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/normalisers/markdown"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/normalisers/plaintext"
)

func newTestRegistry() *Registry {
	return NewRegistry(plaintext.New(), markdown.New(), html.New(), docx.New())
}

func TestNewRegistry(t *testing.T) {
	registry := newTestRegistry()
	require.NotNil(t, registry)

	exts := registry.Extensions()
	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".md")
	assert.Contains(t, exts, ".html")
	assert.Contains(t, exts, ".docx")
}

func TestForFile_MatchesByExtension(t *testing.T) {
	registry := newTestRegistry()

	tests := []struct {
		path string
		want string
	}{
		{"brief.md", "markdown"},
		{"/tmp/docs/brief.MD", "markdown"},
		{"export.html", "html"},
		{"spec.docx", "docx"},
		{"notes.txt", "plaintext"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, registry.ForFile(tc.path).Name())
		})
	}
}

func TestForFile_UnknownExtensionFallsBack(t *testing.T) {
	registry := newTestRegistry()

	assert.Equal(t, "plaintext", registry.ForFile("notes.rst").Name())
	assert.Equal(t, "plaintext", registry.ForFile("no-extension").Name())
}

func TestNormalise_DispatchesByPath(t *testing.T) {
	registry := newTestRegistry()

	text, err := registry.Normalise(context.Background(), "brief.md", []byte("# Scope\n\nOwners **book** slots."))
	require.NoError(t, err)
	assert.Equal(t, "Scope\n\nOwners book slots.", text)

	text, err = registry.Normalise(context.Background(), "brief.weird", []byte("raw text"))
	require.NoError(t, err)
	assert.Equal(t, "raw text", text)
}

func TestRegister_LaterRegistrationWins(t *testing.T) {
	registry := NewRegistry(plaintext.New())
	registry.Register(markdown.New())

	assert.Equal(t, "markdown", registry.ForFile("doc.md").Name())

	registry.Register(html.New())
	assert.Equal(t, "markdown", registry.ForFile("doc.md").Name())
	assert.Equal(t, "html", registry.ForFile("doc.html").Name())
}

func TestExtensions_Sorted(t *testing.T) {
	exts := newTestRegistry().Extensions()

	require.NotEmpty(t, exts)
	for i := 1; i < len(exts); i++ {
		assert.LessOrEqual(t, exts[i-1], exts[i])
	}
}

// Package mcp provides a Model Context Protocol server adapter for Orbit.
// It lets AI assistants submit documents, run the interpretation pipeline
// and read requirement graphs over stdio.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")

// Unavailability errors for optional services. Tools return these
// instead of failing at startup, so a partially wired server still
// serves what it can.
var (
	errPipelineUnavailable = errors.New("mcp: pipeline service is not available")
	errGraphUnavailable    = errors.New("mcp: graph service is not available")
	errExportUnavailable   = errors.New("mcp: export service is not available")
	errExamplesUnavailable = errors.New("mcp: example service is not available")
)

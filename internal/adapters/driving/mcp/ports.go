package mcp

import (
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Document manages document lifecycle and clarifications.
	Document driving.DocumentService

	// Pipeline runs the interpretation pipeline.
	Pipeline driving.PipelineOrchestrator

	// Graph exposes graph versions, regeneration and validation.
	Graph driving.GraphService

	// Export projects graph versions into scope rows.
	Export driving.ExportService

	// Examples manages the retrieval corpus.
	Examples driving.ExampleService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	// The remaining services are optional; their tools report unavailability.
	return nil
}

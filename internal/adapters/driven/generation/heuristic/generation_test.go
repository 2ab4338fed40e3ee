package heuristic

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

const testPrompt = `Interpret the following project document. Each chunk is introduced by its identifier in square brackets.

[chk_0123456789abcdef] Billing Platform. A billing platform for small bakeries. Module: Payments - Checkout flow must support cards: pay with saved cards - Refund workflow should enable partial refunds

[chk_fedcba9876543210] As an admin, I want to export reports so that finance can reconcile. The API integration must use encryption. Uptime of 99.9% is required. What payment providers should we integrate?

Respond with the JSON object only.`

func generateDraft(t *testing.T, prompt string) *scopeDraft {
	t.Helper()
	svc := NewGenerationService()
	out, err := svc.Generate(context.Background(), prompt, driven.GenerateOptions{})
	require.NoError(t, err)

	draft := &scopeDraft{}
	require.NoError(t, json.Unmarshal([]byte(out), draft))
	return draft
}

func TestGenerationService_ImplementsInterface(t *testing.T) {
	var svc driven.GenerationService = NewGenerationService()
	assert.Equal(t, "heuristic", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestGenerationService_Generate_ExtractsScope(t *testing.T) {
	draft := generateDraft(t, testPrompt)

	assert.Equal(t, "Billing Platform. A billing platform for small bakeries.", draft.ExecutiveSummary)

	require.Len(t, draft.Modules, 1)
	assert.Equal(t, "Payments", draft.Modules[0].Name)
	assert.Equal(t, []string{"chk_0123456789abcdef"}, draft.Modules[0].SourceChunks)

	require.Len(t, draft.Features, 2)
	assert.Equal(t, "Checkout Flow Must Support Cards", draft.Features[0].Title)
	assert.Equal(t, "P1", draft.Features[0].Priority)
	assert.Equal(t, []string{"Payments"}, draft.Features[0].Modules)
	assert.Equal(t, "Refund Workflow Should Enable Partial Refunds", draft.Features[1].Title)
	assert.Equal(t, "P2", draft.Features[1].Priority)
}

func TestGenerationService_Generate_RequirementsAndQuestions(t *testing.T) {
	draft := generateDraft(t, testPrompt)

	require.NotEmpty(t, draft.Functional)
	assert.Equal(t, "Checkout flow must support cards: pay with saved cards", draft.Functional[0].Text)
	assert.Equal(t, []string{"Checkout Flow Must Support Cards"}, draft.Functional[0].Features)

	require.Len(t, draft.Technical, 1)
	assert.Equal(t, "The API integration must use encryption.", draft.Technical[0].Text)
	assert.Equal(t, []string{"chk_fedcba9876543210"}, draft.Technical[0].SourceChunks)

	require.Len(t, draft.NonFunctional, 1)
	assert.Equal(t, "Uptime of 99.9% is required.", draft.NonFunctional[0].Text)

	require.Len(t, draft.Questions, 1)
	assert.Equal(t, "What payment providers should we integrate?", draft.Questions[0].Text)
	assert.Equal(t, "context", draft.Questions[0].Category)
}

func TestGenerationService_Generate_StoryBecomesPersonaAndInteraction(t *testing.T) {
	draft := generateDraft(t, testPrompt)

	require.Len(t, draft.Personas, 1)
	assert.Equal(t, "Admin", draft.Personas[0].Name)
	assert.Equal(t, []string{"chk_fedcba9876543210"}, draft.Personas[0].SourceChunks)

	var story *interactionDraft
	for i := range draft.Interactions {
		if draft.Interactions[i].Actor == "Admin" {
			story = &draft.Interactions[i]
		}
	}
	require.NotNil(t, story)
	assert.Equal(t, "export reports", story.Action)
	assert.Equal(t, "finance can reconcile", story.Outcome)
}

func TestGenerationService_Generate_DefaultModule(t *testing.T) {
	draft := generateDraft(t, "[chk_00aa11bb22cc33dd] - Inventory screen shows stock levels")

	require.Len(t, draft.Modules, 1)
	assert.Equal(t, "General", draft.Modules[0].Name)
	require.Len(t, draft.Features, 1)
	assert.Equal(t, []string{"General"}, draft.Features[0].Modules)
}

func TestGenerationService_Generate_InfersPersonaFromAudience(t *testing.T) {
	draft := generateDraft(t, "[chk_00aa11bb22cc33dd] A scheduling page for clinic staff. The page should show open slots.")

	require.Len(t, draft.Personas, 1)
	assert.Equal(t, "Clinic Staff", draft.Personas[0].Name)
}

func TestGenerationService_Generate_IgnoresScaffolding(t *testing.T) {
	prompt := `Respond with JSON like {"source_chunks": ["chk_aaaaaaaaaaaaaaaa"]}.

[chk_00aa11bb22cc33dd] Module: Catalog - Search feature must filter by price.`

	draft := generateDraft(t, prompt)

	require.Len(t, draft.Modules, 1)
	assert.Equal(t, "Catalog", draft.Modules[0].Name)
	for _, f := range draft.Features {
		assert.NotContains(t, f.SourceChunks, "chk_aaaaaaaaaaaaaaaa")
	}
}

func TestGenerationService_Generate_Deterministic(t *testing.T) {
	svc := NewGenerationService()
	first, err := svc.Generate(context.Background(), testPrompt, driven.GenerateOptions{})
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), testPrompt, driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerationService_Generate_NoChunkLines(t *testing.T) {
	svc := NewGenerationService()
	_, err := svc.Generate(context.Background(), "Fix the violations below and respond again.", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "no chunked document text")
}

package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestName(t *testing.T) {
	assert.Equal(t, "markdown", New().Name())
}

func TestExtensions(t *testing.T) {
	exts := New().Extensions()

	require.NotEmpty(t, exts)
	assert.Contains(t, exts, ".md")
	assert.Contains(t, exts, ".markdown")
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings removed",
			input:    "# Title\n## Subtitle\n### Third",
			expected: "Title\nSubtitle\nThird",
		},
		{
			name:     "bold removed",
			input:    "This is **bold** text",
			expected: "This is bold text",
		},
		{
			name:     "links converted",
			input:    "Click [here](https://example.com)",
			expected: "Click here",
		},
		{
			name:     "images removed",
			input:    "See ![alt text](image.png) here",
			expected: "See  here",
		},
		{
			name:     "code blocks removed",
			input:    "Before\n```go\ncode here\n```\nAfter",
			expected: "Before\n\nAfter",
		},
		{
			name:     "inline code keeps its text",
			input:    "Join on the `booking_id` column",
			expected: "Join on the booking_id column",
		},
		{
			name:     "snake_case identifiers survive",
			input:    "The owner_id field links pets to owners",
			expected: "The owner_id field links pets to owners",
		},
		{
			name:     "blockquotes cleaned",
			input:    "> This is a quote",
			expected: "This is a quote",
		},
		{
			name:     "list markers removed",
			input:    "- Item 1\n- Item 2",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "numbered list markers removed",
			input:    "1. First\n2. Second",
			expected: "First\nSecond",
		},
		{
			name:     "horizontal rules removed",
			input:    "Above\n---\nBelow",
			expected: "Above\n\nBelow",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}

func TestNormalise_ComplexDocument(t *testing.T) {
	complexMarkdown := `# Booking Platform Brief

## Scope

Pet owners must be able to **register** and book a slot with a vet.

- Confirmation email after each booking
- Reminder 24 hours before the appointment

` + "```json" + `
{"internal": "notes that are not requirements"}
` + "```" + `

See the [payment policy](https://example.com/payments) for details.
`

	text, err := New().Normalise(context.Background(), []byte(complexMarkdown))
	require.NoError(t, err)

	assert.Contains(t, text, "Booking Platform Brief")
	assert.Contains(t, text, "register")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "```")
	assert.NotContains(t, text, "internal")
	assert.Contains(t, text, "payment policy")
	assert.NotContains(t, text, "https://example.com")
}

func TestNormalise_EmptyInput(t *testing.T) {
	text, err := New().Normalise(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, text)
}

func BenchmarkStripMarkdown(b *testing.B) {
	content := `# Heading

Paragraph with **bold** and *italic*.

- List item 1
- List item 2

[Link](https://example.com)

` + "```" + `
code block
` + "```"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = stripMarkdown(content)
	}
}

package html

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
	assert.Equal(t, "html", New().Name())
}

func TestExtensions(t *testing.T) {
	exts := New().Extensions()

	require.NotEmpty(t, exts)
	assert.Contains(t, exts, ".html")
	assert.Contains(t, exts, ".htm")
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple paragraph",
			input:    "<p>Hello World</p>",
			expected: "Hello World",
		},
		{
			name:     "nested tags",
			input:    "<div><p><strong>Bold</strong> text</p></div>",
			expected: "Bold text",
		},
		{
			name:     "script removed",
			input:    "<p>Before</p><script>alert('evil');</script><p>After</p>",
			expected: "Before\nAfter",
		},
		{
			name:     "style removed",
			input:    "<style>.foo { color: red; }</style><p>Content</p>",
			expected: "Content",
		},
		{
			name:     "head removed",
			input:    "<head><meta charset='utf-8'><title>Title</title></head><body>Content</body>",
			expected: "Content",
		},
		{
			name:     "br to newline",
			input:    "Line 1<br>Line 2<br/>Line 3",
			expected: "Line 1\nLine 2\nLine 3",
		},
		{
			name:     "block elements create newlines",
			input:    "<div>Block 1</div><div>Block 2</div>",
			expected: "Block 1\nBlock 2",
		},
		{
			name:     "HTML entities decoded",
			input:    "<p>&lt;tag&gt; &amp; &quot;quotes&quot;</p>",
			expected: "<tag> & \"quotes\"",
		},
		{
			name:     "comments removed",
			input:    "<p>Before</p><!-- comment --><p>After</p>",
			expected: "Before\nAfter",
		},
		{
			name:     "list items",
			input:    "<ul><li>Item 1</li><li>Item 2</li></ul>",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "headings",
			input:    "<h1>Title</h1><h2>Subtitle</h2><p>Content</p>",
			expected: "Title\nSubtitle\nContent",
		},
		{
			name:     "link text preserved",
			input:    `<a href="https://example.com">Click here</a>`,
			expected: "Click here",
		},
		{
			name:     "images removed",
			input:    `<p>See <img src="image.png" alt="Image"> here</p>`,
			expected: "See here",
		},
		{
			name:     "svg removed",
			input:    `<p>Before</p><svg width="100"><circle cx="50"/></svg><p>After</p>`,
			expected: "Before\nAfter",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripHTML(tc.input))
		})
	}
}

func TestNormalise_ExportedBrief(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Booking Platform Brief</title><style>body { margin: 0; }</style></head>
<body>
<h1>Scope</h1>
<p>Pet owners must be able to <strong>register</strong> and book a slot.</p>
<ul>
<li>Confirmation email after each booking</li>
<li>Reminder 24 hours before the appointment</li>
</ul>
<script>trackPageView();</script>
</body>
</html>`

	text, err := New().Normalise(context.Background(), []byte(page))
	require.NoError(t, err)

	assert.Contains(t, text, "Scope")
	assert.Contains(t, text, "register and book a slot")
	assert.Contains(t, text, "Reminder 24 hours")
	assert.NotContains(t, text, "<")
	assert.NotContains(t, text, "trackPageView")
	assert.NotContains(t, text, "margin")
}

func TestNormalise_EmptyInput(t *testing.T) {
	text, err := New().Normalise(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, text)
}

func BenchmarkStripHTML(b *testing.B) {
	page := `<html><head><title>Doc</title></head><body>
<h1>Heading</h1><p>Paragraph with <strong>bold</strong> text.</p>
<ul><li>One</li><li>Two</li></ul>
</body></html>`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = stripHTML(page)
	}
}

package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML files. Tags and non-content subtrees are
// stripped, block boundaries become newlines and entities are decoded.
type Normaliser struct{}

// New creates an HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the normaliser name.
func (n *Normaliser) Name() string {
	return "html"
}

// Extensions returns the file extensions this normaliser claims.
func (n *Normaliser) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Normalise strips markup and returns the readable text.
func (n *Normaliser) Normalise(_ context.Context, raw []byte) (string, error) {
	return stripHTML(string(raw)), nil
}

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptTags        = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTags         = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTags      = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTags          = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTags           = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	closeBlockElement = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// stripHTML removes markup and extracts readable text, one line per
// block element, empty lines dropped.
func stripHTML(content string) string {
	content = scriptTags.ReplaceAllString(content, "")
	content = styleTags.ReplaceAllString(content, "")
	content = noscriptTags.ReplaceAllString(content, "")
	content = headTags.ReplaceAllString(content, "")
	content = svgTags.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = closeBlockElement.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	var result []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

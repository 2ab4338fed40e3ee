package normalisers

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
)

// Registry dispatches normalisation by file extension.
// Unknown extensions fall through to the fallback normaliser, so any
// file can be submitted and is read as plain text at worst.
type Registry struct {
	byExt    map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewRegistry creates a registry with the given fallback for unmatched
// extensions. The fallback's own extensions are registered too.
func NewRegistry(fallback driven.Normaliser, normalisers ...driven.Normaliser) *Registry {
	r := &Registry{
		byExt:    make(map[string]driven.Normaliser),
		fallback: fallback,
	}
	r.Register(fallback)
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser, claiming its extensions. A later
// registration for the same extension wins.
func (r *Registry) Register(n driven.Normaliser) {
	for _, ext := range n.Extensions() {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// ForFile returns the normaliser responsible for the given path.
func (r *Registry) ForFile(path string) driven.Normaliser {
	ext := strings.ToLower(filepath.Ext(path))
	if n, ok := r.byExt[ext]; ok {
		return n
	}
	return r.fallback
}

// Normalise extracts plain text from the raw bytes of the file at path,
// using the normaliser matching its extension.
func (r *Registry) Normalise(ctx context.Context, path string, raw []byte) (string, error) {
	return r.ForFile(path).Normalise(ctx, raw)
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

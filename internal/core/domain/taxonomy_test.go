package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTaxonomy_Canonicalize tests synonym and case-insensitive matching
func TestTaxonomy_Canonicalize(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		name   string
		domain string
		in     string
		want   string
	}{
		{"exact name", DomainEcommerce, "Cart & Ordering", "Cart & Ordering"},
		{"synonym", DomainEcommerce, "basket", "Cart & Ordering"},
		{"case insensitive", DomainEcommerce, "PAYMENTS", "Payments & Checkout"},
		{"punctuation insensitive", DomainEcommerce, "cart-&-ordering", "Cart & Ordering"},
		{"generic fallback", DomainEcommerce, "login", "Authentication & Profile"},
		{"unmatched passes through", DomainEcommerce, "Drone Delivery", "Drone Delivery"},
		{"generic domain", DomainGeneric, "admin panel", "Admin Back Office"},
		{"fintech synonym", DomainFintech, "kyc", "Accounts & Onboarding"},
		{"unknown domain uses generic", "robotics", "faq", "Support & Help Center"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tax.Canonicalize(tt.domain, tt.in))
		})
	}
}

// TestTaxonomy_CanonicalizeEmpty tests the empty-name edge
func TestTaxonomy_CanonicalizeEmpty(t *testing.T) {
	tax := DefaultTaxonomy()
	assert.Equal(t, "", tax.Canonicalize(DomainGeneric, ""))
	assert.Equal(t, "!!!", tax.Canonicalize(DomainGeneric, "!!!"))
}

// TestDomainLabels tests that generic is last and all labels are present
func TestDomainLabels(t *testing.T) {
	labels := DomainLabels()
	assert.Len(t, labels, 5)
	assert.Equal(t, DomainGeneric, labels[len(labels)-1])
	assert.Contains(t, labels, DomainFintech)
	assert.Contains(t, labels, DomainHealthcare)
	assert.Contains(t, labels, DomainSaaS)
	assert.Contains(t, labels, DomainEcommerce)
}

// TestDefaultTaxonomy_CoversAllDomains tests that every label has a module set
func TestDefaultTaxonomy_CoversAllDomains(t *testing.T) {
	tax := DefaultTaxonomy()
	for _, label := range DomainLabels() {
		dt, ok := tax.Domains[label]
		assert.True(t, ok, "missing taxonomy for %s", label)
		assert.NotEmpty(t, dt.Modules, "empty module set for %s", label)
	}
}

// TestTrimExcerpt tests prompt excerpt truncation
func TestTrimExcerpt(t *testing.T) {
	assert.Equal(t, "short", TrimExcerpt("short", 100))
	assert.Equal(t, "abc", TrimExcerpt("abc", 3))
	assert.Equal(t, "ab…", TrimExcerpt("abcd", 2))
	assert.Equal(t, "no limit", TrimExcerpt("no limit", 0))
}

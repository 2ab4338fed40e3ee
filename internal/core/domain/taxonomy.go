package domain

import "strings"

// CanonicalModule is one canonical module name with the synonyms that
// map onto it.
type CanonicalModule struct {
	Name     string   `yaml:"name"`
	Synonyms []string `yaml:"synonyms,omitempty"`
}

// DomainTaxonomy is the canonical module set for one domain label.
type DomainTaxonomy struct {
	Modules []CanonicalModule `yaml:"modules"`
}

// Taxonomy maps domain labels to canonical module sets. The graph
// builder canonicalizes generated module names against it; unmatched
// names pass through verbatim. The taxonomy is explicit configuration
// handed to the builder, never a hidden global.
type Taxonomy struct {
	Domains map[string]DomainTaxonomy `yaml:"domains"`
}

// Canonicalize maps a module name onto the canonical name for the
// given domain. Matching is case-, punctuation- and whitespace-
// insensitive over names and synonyms; the generic set is consulted
// when the domain has none. Returns the input name when nothing
// matches.
func (t *Taxonomy) Canonicalize(domainLabel, name string) string {
	key := normalizeIDKey(name)
	if key == "" {
		return name
	}
	if dt, ok := t.Domains[domainLabel]; ok {
		if canon, ok := matchModule(dt, key); ok {
			return canon
		}
	}
	if domainLabel != DomainGeneric {
		if dt, ok := t.Domains[DomainGeneric]; ok {
			if canon, ok := matchModule(dt, key); ok {
				return canon
			}
		}
	}
	return name
}

func matchModule(dt DomainTaxonomy, key string) (string, bool) {
	for _, m := range dt.Modules {
		if normalizeIDKey(m.Name) == key {
			return m.Name, true
		}
		for _, syn := range m.Synonyms {
			if normalizeIDKey(syn) == key {
				return m.Name, true
			}
		}
	}
	return "", false
}

// Domain labels the classifier can produce.
const (
	DomainFintech    = "fintech"
	DomainHealthcare = "healthcare"
	DomainSaaS       = "saas"
	DomainEcommerce  = "ecommerce"
	DomainGeneric    = "generic"
)

// DomainLabels lists all classifier labels, generic last.
func DomainLabels() []string {
	return []string{DomainFintech, DomainHealthcare, DomainSaaS, DomainEcommerce, DomainGeneric}
}

// DefaultTaxonomy returns the embedded canonical module sets. A YAML
// taxonomy file replaces this wholesale when configured.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Domains: map[string]DomainTaxonomy{
			DomainGeneric: {Modules: []CanonicalModule{
				{Name: "Authentication & Profile", Synonyms: []string{"auth", "authentication", "login", "user management", "accounts", "profile"}},
				{Name: "Dashboard & Analytics", Synonyms: []string{"analytics", "reporting", "dashboard", "reports", "metrics"}},
				{Name: "Notifications & Messaging", Synonyms: []string{"notifications", "alerts", "messaging", "emails", "push notifications"}},
				{Name: "Admin Back Office", Synonyms: []string{"admin", "administration", "back office", "admin panel"}},
				{Name: "Support & Help Center", Synonyms: []string{"support", "help", "help center", "faq"}},
				{Name: "Integrations", Synonyms: []string{"integration", "third party integrations", "api integrations"}},
				{Name: "Infrastructure & DevOps", Synonyms: []string{"infrastructure", "devops", "deployment", "hosting"}},
			}},
			DomainEcommerce: {Modules: []CanonicalModule{
				{Name: "Catalog & Search", Synonyms: []string{"catalog", "products", "product catalog", "search", "browse"}},
				{Name: "Cart & Ordering", Synonyms: []string{"cart", "basket", "ordering", "orders", "checkout flow"}},
				{Name: "Payments & Checkout", Synonyms: []string{"payments", "payment", "checkout", "billing"}},
				{Name: "Order Tracking & History", Synonyms: []string{"order tracking", "order history", "fulfilment", "fulfillment", "shipping"}},
				{Name: "Offers & Promotions", Synonyms: []string{"offers", "promotions", "discounts", "coupons"}},
				{Name: "Rewards & Loyalty", Synonyms: []string{"rewards", "loyalty", "points"}},
				{Name: "Inventory Management", Synonyms: []string{"inventory", "stock", "warehouse"}},
			}},
			DomainFintech: {Modules: []CanonicalModule{
				{Name: "Accounts & Onboarding", Synonyms: []string{"onboarding", "kyc", "account opening", "accounts"}},
				{Name: "Payments & Transfers", Synonyms: []string{"payments", "transfers", "transactions", "remittance"}},
				{Name: "Cards & Wallets", Synonyms: []string{"cards", "wallet", "wallets", "card management"}},
				{Name: "Risk & Compliance", Synonyms: []string{"compliance", "risk", "aml", "fraud", "fraud detection"}},
				{Name: "Statements & Reporting", Synonyms: []string{"statements", "reporting", "ledger"}},
			}},
			DomainHealthcare: {Modules: []CanonicalModule{
				{Name: "Patient Records", Synonyms: []string{"patients", "ehr", "emr", "medical records", "records"}},
				{Name: "Scheduling & Appointments", Synonyms: []string{"scheduling", "appointments", "booking", "calendar"}},
				{Name: "Clinical Workflows", Synonyms: []string{"clinical", "care plans", "prescriptions", "orders"}},
				{Name: "Billing & Claims", Synonyms: []string{"billing", "claims", "insurance"}},
				{Name: "Compliance & Audit", Synonyms: []string{"hipaa", "compliance", "audit", "consent"}},
			}},
			DomainSaaS: {Modules: []CanonicalModule{
				{Name: "Workspaces & Teams", Synonyms: []string{"workspaces", "teams", "organizations", "tenants"}},
				{Name: "Subscription & Billing", Synonyms: []string{"subscription", "billing", "plans", "pricing"}},
				{Name: "Collaboration", Synonyms: []string{"collaboration", "sharing", "comments", "activity feed"}},
				{Name: "API & Webhooks", Synonyms: []string{"api", "webhooks", "developer platform", "sdk"}},
				{Name: "Usage & Analytics", Synonyms: []string{"usage", "analytics", "metering", "insights"}},
			}},
		},
	}
}

// NormalizeEntityName exposes the identity normalizer for callers that
// need to compare names the way content addressing does.
func NormalizeEntityName(s string) string {
	return normalizeIDKey(s)
}

// TrimExcerpt shortens text for prompts and logs, appending an
// ellipsis when truncation happened. Max is in runes.
func TrimExcerpt(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}

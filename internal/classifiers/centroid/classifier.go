// Package centroid provides a domain classifier that compares the mean
// document embedding against per-domain seed centroids.
package centroid

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/vectors"
)

// Ensure Classifier implements the interface.
var _ driven.DomainClassifier = (*Classifier)(nil)

// DefaultMarginThreshold is the normalized top1-top2 margin below which
// classification falls back to the generic domain.
const DefaultMarginThreshold = 0.08

// domainSeeds anchor each domain label. The classifier embeds them once
// per embedder and keeps the normalized mean as the domain centroid.
var domainSeeds = map[string][]string{
	domain.DomainFintech: {
		"Customers open accounts after passing KYC and identity verification.",
		"The ledger records every transaction with double-entry balances.",
		"Users transfer funds between accounts and schedule recurring payments.",
		"Compliance monitors transactions for AML flags and files reports.",
		"Card issuing, limits, and wallet top-ups are managed in the app.",
	},
	domain.DomainHealthcare: {
		"Patients book appointments with providers through the scheduling system.",
		"Clinicians chart encounters in the electronic medical record.",
		"Prescriptions and lab orders route to the right facility.",
		"Claims are submitted to insurers and reconciled against payments.",
		"Access to patient data is audited for HIPAA compliance.",
	},
	domain.DomainSaaS: {
		"Teams create workspaces and invite members with role-based access.",
		"Subscriptions upgrade between plans with prorated billing.",
		"Usage metering feeds dashboards and monthly invoices.",
		"Customers integrate via REST APIs, webhooks, and SDKs.",
		"Admins manage seats, single sign-on, and organization settings.",
	},
	domain.DomainEcommerce: {
		"Shoppers browse the product catalog and filter by category.",
		"The cart keeps items across sessions and applies discount codes.",
		"Checkout collects shipping details and charges the selected payment method.",
		"Orders are tracked from fulfilment through delivery and returns.",
		"Inventory levels sync across warehouses and storefronts.",
	},
	domain.DomainGeneric: {
		"Users sign in and manage their profile and preferences.",
		"The dashboard summarizes recent activity and key metrics.",
		"Notifications alert users about changes that need attention.",
		"Administrators configure settings and review audit logs.",
		"The product integrates with external services over APIs.",
	},
}

// Classifier assigns domain labels by centroid similarity. It implements
// the driven.DomainClassifier interface.
type Classifier struct {
	embedder        driven.EmbeddingService
	marginThreshold float64
	seeds           map[string][]string

	mu        sync.Mutex
	centroids map[string][]float32
}

// Option configures the classifier.
type Option func(*Classifier)

// WithMarginThreshold sets the generic fallback margin.
func WithMarginThreshold(t float64) Option {
	return func(c *Classifier) {
		if t > 0 {
			c.marginThreshold = t
		}
	}
}

// WithSeeds replaces the seed phrases, keyed by domain label.
func WithSeeds(seeds map[string][]string) Option {
	return func(c *Classifier) {
		if len(seeds) > 0 {
			c.seeds = seeds
		}
	}
}

// New creates a centroid classifier backed by the given embedding service.
func New(embedder driven.EmbeddingService, opts ...Option) *Classifier {
	c := &Classifier{
		embedder:        embedder,
		marginThreshold: DefaultMarginThreshold,
		seeds:           domainSeeds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify mean-pools the chunk embeddings and returns the closest domain
// label with a confidence in [0,1]. The confidence is the normalized
// margin between the best and second-best centroid; a margin under the
// threshold falls back to the generic label.
func (c *Classifier) Classify(ctx context.Context, chunks []domain.Chunk) (string, float64, error) {
	embeddings := make([][]float32, 0, len(chunks))
	for _, ch := range chunks {
		if len(ch.Embedding) > 0 {
			embeddings = append(embeddings, ch.Embedding)
		}
	}
	docVec := vectors.Mean(embeddings)
	if docVec == nil {
		return domain.DomainGeneric, 0, nil
	}

	centroids, err := c.domainCentroids(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("domain centroids: %w", err)
	}

	type score struct {
		label string
		sim   float64
	}
	scores := make([]score, 0, len(centroids))
	for label, centroid := range centroids {
		scores = append(scores, score{label: label, sim: vectors.Cosine(docVec, centroid)})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].sim != scores[j].sim {
			return scores[i].sim > scores[j].sim
		}
		return scores[i].label < scores[j].label
	})

	if len(scores) == 0 || scores[0].sim <= 0 {
		return domain.DomainGeneric, 0, nil
	}

	confidence := 0.0
	if len(scores) > 1 {
		confidence = (scores[0].sim - scores[1].sim) / scores[0].sim
	} else {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	if confidence < c.marginThreshold {
		return domain.DomainGeneric, confidence, nil
	}
	return scores[0].label, confidence, nil
}

// domainCentroids embeds the seed phrases once and caches the normalized
// means. Failed attempts are retried on the next call.
func (c *Classifier) domainCentroids(ctx context.Context) (map[string][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.centroids != nil {
		return c.centroids, nil
	}

	centroids := make(map[string][]float32, len(c.seeds))
	for label, phrases := range c.seeds {
		vecs, err := c.embedder.EmbedBatch(ctx, phrases)
		if err != nil {
			return nil, fmt.Errorf("embed %s seeds: %w", label, err)
		}
		centroid := vectors.NormalizeL2(vectors.Mean(vecs))
		if centroid == nil {
			return nil, fmt.Errorf("empty centroid for %s", label)
		}
		centroids[label] = centroid
	}
	c.centroids = centroids
	return c.centroids, nil
}

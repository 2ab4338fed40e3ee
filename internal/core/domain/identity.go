package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// EntityKind is the type tag hashed into a content-addressed entity ID.
type EntityKind string

const (
	KindPersona     EntityKind = "persona"
	KindModule      EntityKind = "module"
	KindFeature     EntityKind = "feature"
	KindInteraction EntityKind = "interaction"
	KindRequirement EntityKind = "requirement"
	KindQuestion    EntityKind = "question"
)

// prefix returns the short ID prefix for the kind.
func (k EntityKind) prefix() string {
	switch k {
	case KindPersona:
		return "per"
	case KindModule:
		return "mod"
	case KindFeature:
		return "fea"
	case KindInteraction:
		return "int"
	case KindRequirement:
		return "req"
	case KindQuestion:
		return "que"
	}
	return "ent"
}

// idHashLen is the number of hex digits kept from the entity hash.
const idHashLen = 16

// EntityID derives the content-addressed identifier for a graph entity
// from its kind, its normalized title or name, and the ID of the first
// source chunk it links to. Identical inputs produce identical IDs on
// every run, which is what makes regeneration and re-export repeatable.
// Random identifiers are never used for graph entities.
func EntityID(kind EntityKind, name, firstChunkID string) string {
	h := sha256.Sum256([]byte(string(kind) + "\x1f" + normalizeIDKey(name) + "\x1f" + firstChunkID))
	return kind.prefix() + "_" + hex.EncodeToString(h[:])[:idHashLen]
}

// ChunkID derives the content-addressed identifier for a chunk from
// its document, position and text.
func ChunkID(docID string, sequence int, text string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\x1f%d\x1f%s", docID, sequence, text)))
	return "chk_" + hex.EncodeToString(h[:])[:idHashLen]
}

// IssueID derives a stable identifier for a validation issue from its
// type and the entities involved, so re-validating the same graph
// reports the same issue IDs.
func IssueID(t IssueType, related ...string) string {
	h := sha256.Sum256([]byte(string(t) + "\x1f" + strings.Join(related, "\x1f")))
	return "iss_" + hex.EncodeToString(h[:])[:idHashLen]
}

// GraphVersionID names one graph version. Versions are addressed by
// document and version number, never by a random handle.
func GraphVersionID(docID string, version int) string {
	return fmt.Sprintf("%s.v%d", docID, version)
}

// ExampleID derives the identifier for a corpus example from its domain
// label and input excerpt. Re-adding the same example text is an upsert,
// not a duplicate.
func ExampleID(domainLabel, textExcerpt string) string {
	h := sha256.Sum256([]byte(domainLabel + "\x1f" + textExcerpt))
	return "exm_" + hex.EncodeToString(h[:])[:idHashLen]
}

// ClarificationID derives the identifier for a clarification question
// from its document and question text, so re-asking the same question
// in one round cannot duplicate it.
func ClarificationID(docID, question string) string {
	h := sha256.Sum256([]byte(docID + "\x1f" + normalizeIDKey(question)))
	return "clr_" + hex.EncodeToString(h[:])[:idHashLen]
}

// DocumentID derives the identifier for a submitted document. The
// submission instant is part of the input, so resubmitting the same
// text yields a distinct document.
func DocumentID(name, content string, submittedAtUnixNano int64) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\x1f%s\x1f%d", name, content, submittedAtUnixNano)))
	return "doc_" + hex.EncodeToString(h[:])[:idHashLen]
}

// ArtifactID derives the identifier for an export artifact from the
// graph version and export type. Re-exporting the same version in the
// same format addresses the same artifact.
func ArtifactID(graphID string, t ExportType) string {
	h := sha256.Sum256([]byte(graphID + "\x1f" + string(t)))
	return "art_" + hex.EncodeToString(h[:])[:idHashLen]
}

// normalizeIDKey canonicalizes a title or name before hashing: case,
// punctuation and whitespace runs do not change an entity's identity.
func normalizeIDKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_':
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

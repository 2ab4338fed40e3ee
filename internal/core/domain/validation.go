package domain

import "time"

// Severity grades a validation issue.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Penalty returns the confidence deduction for one issue of this severity.
func (s Severity) Penalty() float64 {
	switch s {
	case SeverityHigh:
		return 0.15
	case SeverityMedium:
		return 0.05
	case SeverityLow:
		return 0.01
	}
	return 0
}

// IssueType names the validation rule that produced an issue.
type IssueType string

const (
	// IssuePersonaUncovered flags a persona no feature references, or a
	// feature referencing no persona while personas exist.
	IssuePersonaUncovered IssueType = "persona_uncovered"

	// IssueOrphanFeature flags a feature mapped to no module.
	IssueOrphanFeature IssueType = "orphan_feature"

	// IssueDuplicate flags two near-duplicate features or requirements.
	IssueDuplicate IssueType = "duplicate"

	// IssueContradiction flags contradicting requirement pairs or a
	// rejected dependency-cycle edge.
	IssueContradiction IssueType = "contradiction"

	// IssueDanglingReference flags a dropped link to an unknown entity ID.
	IssueDanglingReference IssueType = "dangling_reference"
)

// Issue records one validation finding. Issues describe the graph;
// they never change it.
type Issue struct {
	// IssueID is content-addressed from type and related entities so
	// repeated validation of the same graph yields the same IDs.
	IssueID string `json:"issue_id"`

	// Type names the producing rule.
	Type IssueType `json:"type"`

	// Severity grades the finding.
	Severity Severity `json:"severity"`

	// Summary is a one-line human description.
	Summary string `json:"summary"`

	// RelatedEntities lists the entity IDs involved.
	RelatedEntities []string `json:"related_entities,omitempty"`

	// Recommendation suggests a remediation.
	Recommendation string `json:"recommendation,omitempty"`
}

// ReportStatus is the overall verdict of a validation run.
type ReportStatus string

const (
	ReportPass ReportStatus = "pass"
	ReportWarn ReportStatus = "warn"
	ReportFail ReportStatus = "fail"
)

// WarnScoreThreshold is the confidence score below which a report
// without high-severity issues is still downgraded to warn.
const WarnScoreThreshold = 0.75

// ValidationReport is the result of validating one graph version.
type ValidationReport struct {
	GraphID         string       `json:"graph_id"`
	Version         int          `json:"version"`
	Issues          []Issue      `json:"issues"`
	ConfidenceScore float64      `json:"confidence_score"`
	Status          ReportStatus `json:"status"`
	CheckedAt       time.Time    `json:"checked_at"`
}

// Clone returns a deep copy of the report.
func (r *ValidationReport) Clone() *ValidationReport {
	out := *r
	if r.Issues != nil {
		out.Issues = make([]Issue, len(r.Issues))
		for i, is := range r.Issues {
			is.RelatedEntities = cloneStrings(is.RelatedEntities)
			out.Issues[i] = is
		}
	}
	return &out
}

// CountBySeverity returns how many issues carry the given severity.
func (r *ValidationReport) CountBySeverity(s Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == s {
			n++
		}
	}
	return n
}

// IssueIDs returns the IDs of all issues in report order.
func (r *ValidationReport) IssueIDs() []string {
	ids := make([]string, len(r.Issues))
	for i, is := range r.Issues {
		ids[i] = is.IssueID
	}
	return ids
}

// HighestSeverity returns the most severe level present, or "" when
// the report is clean.
func (r *ValidationReport) HighestSeverity() Severity {
	var (
		medium bool
		low    bool
	)
	for _, is := range r.Issues {
		switch is.Severity {
		case SeverityHigh:
			return SeverityHigh
		case SeverityMedium:
			medium = true
		case SeverityLow:
			low = true
		}
	}
	if medium {
		return SeverityMedium
	}
	if low {
		return SeverityLow
	}
	return ""
}

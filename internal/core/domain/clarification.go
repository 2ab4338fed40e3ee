package domain

import "time"

// ClarificationStatus tracks one clarification question.
type ClarificationStatus string

const (
	ClarificationPending  ClarificationStatus = "pending"
	ClarificationAnswered ClarificationStatus = "answered"
	ClarificationExpired  ClarificationStatus = "expired"
)

// Clarification is a question raised before generation when the
// submitted text is too thin to interpret confidently. Processing
// resumes when every clarification is answered or expired.
type Clarification struct {
	// ID is the unique identifier for the clarification.
	ID string

	// DocID links to the parked document.
	DocID string

	// Question is the text shown to the caller.
	Question string

	// Category classifies what the answer would unblock.
	Category QuestionCategory

	// SuggestedAnswer is an assumption the pipeline will proceed with
	// if the clarification expires unanswered.
	SuggestedAnswer string

	// Answer is the caller-provided answer, empty until answered.
	Answer string

	// Status is the current state.
	Status ClarificationStatus

	// AskedAt is when the question was raised.
	AskedAt time.Time

	// AnsweredAt is when the answer arrived, zero otherwise.
	AnsweredAt time.Time

	// ExpiresAt is when the question lapses and processing proceeds
	// on the suggested answer.
	ExpiresAt time.Time
}

// Resolved reports whether the clarification no longer blocks processing.
func (c *Clarification) Resolved() bool {
	return c.Status == ClarificationAnswered || c.Status == ClarificationExpired
}

// EffectiveAnswer returns the answer processing should use: the
// caller's answer when present, otherwise the recorded assumption.
func (c *Clarification) EffectiveAnswer() string {
	if c.Answer != "" {
		return c.Answer
	}
	return c.SuggestedAnswer
}

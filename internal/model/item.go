package model

import "fmt"

// Suggestion is the AI moderation label shown next to an item
type Suggestion string

const (
	SuggestionKeep  Suggestion = "Keep"
	SuggestionBlock Suggestion = "Block"
)

// Valid reports whether s is a known suggestion label
func (s Suggestion) Valid() bool {
	return s == SuggestionKeep || s == SuggestionBlock
}

// Item is a single decision item from the catalog
type Item struct {
	ID           int        `json:"id" yaml:"id" bson:"id"`
	Text         string     `json:"text" yaml:"text" bson:"text"`
	AISuggestion Suggestion `json:"aiSuggestion" yaml:"aiSuggestion" bson:"aiSuggestion"`
}

// Decision is the participant's verdict on the AI suggestion
type Decision string

const (
	DecisionApprove Decision = "Approve"
	DecisionReject  Decision = "Reject"
)

// ParseDecision accepts the canonical labels only
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	}
	return "", fmt.Errorf("unknown decision %q", s)
}

package model

import "time"

// GateView tells the participant surface whether decision actions are available
type GateView struct {
	Enabled bool `json:"enabled"`

	// Condition B
	Verify  VerifyStatus `json:"verify,omitempty"`
	ReadyAt *time.Time   `json:"readyAt,omitempty"`

	// Condition C
	Justification string   `json:"justification,omitempty"`
	MinWords      int      `json:"minWords,omitempty"`
	WordsNeeded   int      `json:"wordsNeeded,omitempty"`
	Reasons       []string `json:"reasons,omitempty"`
}

// ItemView is the item currently under decision
type ItemView struct {
	Item
	Number int      `json:"number"` // 1-based
	Total  int      `json:"total"`
	Gate   GateView `json:"gate"`
}

// SessionView is the read model returned after every interaction
type SessionView struct {
	SessionID   string           `json:"sessionId"`
	Condition   Condition        `json:"condition"`
	Phase       Phase            `json:"phase"`
	Item        *ItemView        `json:"item,omitempty"`
	Guidelines  string           `json:"guidelines,omitempty"`
	ResponseLog []LoggedDecision `json:"responseLog,omitempty"`

	// Warning carries a persistence failure that did not block progress
	Warning string `json:"warning,omitempty"`
	// Duplicate is set when the action targeted an item that was already decided
	Duplicate bool `json:"duplicate,omitempty"`
}

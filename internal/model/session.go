package model

import "time"

// Phase is a position in the participant lifecycle
type Phase string

const (
	PhaseConsent      Phase = "consent"
	PhasePrescreening Phase = "prescreening"
	PhaseGuidelines   Phase = "guidelines"
	PhaseDecisionLoop Phase = "decision_loop"
	PhaseSurvey       Phase = "survey"
	PhaseCompleted    Phase = "completed"
)

// Progress holds the completion flags the phase router scans.
// Flags are only ever set in lifecycle order.
type Progress struct {
	ConsentGiven           bool `json:"consentGiven"`
	PrescreeningComplete   bool `json:"prescreeningComplete"`
	GuidelinesAcknowledged bool `json:"guidelinesAcknowledged"`
	AllItemsDecided        bool `json:"allItemsDecided"`
	SurveySubmitted        bool `json:"surveySubmitted"`
}

// VerifyStatus is the staged state of the verification gate
type VerifyStatus string

const (
	VerifyClosed  VerifyStatus = "closed"
	VerifyPending VerifyStatus = "pending"
	VerifyOpen    VerifyStatus = "open"
)

// GateState is the per-item friction state. It is replaced with a fresh
// value for the next item every time the cursor advances.
type GateState struct {
	ItemID            int          `json:"itemId"`
	Verify            VerifyStatus `json:"verify"`
	VerifyRequestedAt time.Time    `json:"verifyRequestedAt,omitempty"`
	Justification     string       `json:"justification,omitempty"`
}

// NewGateState returns the initial gate for an item
func NewGateState(itemID int) GateState {
	return GateState{ItemID: itemID, Verify: VerifyClosed}
}

// LoggedDecision is an entry of the in-memory response log shown at the end
// of the session. It is not the authoritative copy.
type LoggedDecision struct {
	ItemID        int        `json:"itemId"`
	ItemText      string     `json:"itemText"`
	AISuggestion  Suggestion `json:"aiSuggestion"`
	Decision      Decision   `json:"decision"`
	Justification string     `json:"justification,omitempty"`
	DecidedAt     time.Time  `json:"decidedAt"`
	Persisted     bool       `json:"persisted"`
}

// Session is one participant's run through the study
type Session struct {
	ID               string           `json:"id"`
	Condition        Condition        `json:"condition"`
	Progress         Progress         `json:"progress"`
	CurrentItemIndex int              `json:"currentItemIndex"`
	Gate             GateState        `json:"gate"`
	ResponseLog      []LoggedDecision `json:"responseLog"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Decided reports whether itemID already has an entry in the response log
func (s *Session) Decided(itemID int) bool {
	for _, d := range s.ResponseLog {
		if d.ItemID == itemID {
			return true
		}
	}
	return false
}

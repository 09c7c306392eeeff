package study

import (
	"fmt"
	"strings"
	"time"

	"frictionstudy/internal/model"
)

// JustificationMode selects how condition C collects its justification
type JustificationMode string

const (
	JustifyFreeText JustificationMode = "free_text"
	JustifyTaxonomy JustificationMode = "taxonomy"
)

// PolicySettings parameterizes the friction policies
type PolicySettings struct {
	VerifyDelay       time.Duration     `yaml:"verifyDelay" json:"verifyDelay"`
	MinWords          int               `yaml:"minWords" json:"minWords"`
	JustificationMode JustificationMode `yaml:"justificationMode" json:"justificationMode"`
	Reasons           []string          `yaml:"reasons" json:"reasons"`
}

// Policy decides whether Approve and Reject are available for the current
// item and what extra input goes onto the response record.
type Policy interface {
	Condition() model.Condition
	Enabled(gate model.GateState, now time.Time) bool
	Capture(gate model.GateState) string
	Describe(gate model.GateState, now time.Time) model.GateView
}

// Verifier is implemented by policies that expose a "verify" action
type Verifier interface {
	Verify(gate model.GateState, now time.Time) model.GateState
	ReadyAt(gate model.GateState) (time.Time, bool)
}

// Justifier is implemented by policies that collect a justification
type Justifier interface {
	Justify(gate model.GateState, itemID int, input string) (model.GateState, error)
}

// NewPolicies builds one policy per condition from the same settings
func NewPolicies(s PolicySettings) map[model.Condition]Policy {
	return map[model.Condition]Policy{
		model.ConditionImmediate:     Immediate{},
		model.ConditionVerification:  VerificationGate{Delay: s.VerifyDelay},
		model.ConditionJustification: JustificationGate{Mode: s.JustificationMode, MinWords: s.MinWords, Reasons: s.Reasons},
	}
}

// Immediate never gates
type Immediate struct{}

func (Immediate) Condition() model.Condition { return model.ConditionImmediate }
func (Immediate) Enabled(model.GateState, time.Time) bool { return true }
func (Immediate) Capture(model.GateState) string { return "" }
func (Immediate) Describe(model.GateState, time.Time) model.GateView { return model.GateView{Enabled: true} }

// VerificationGate keeps the actions closed until the participant asks for a
// verification and Delay has passed. The gate goes closed -> pending -> open.
type VerificationGate struct {
	Delay time.Duration
}

func (VerificationGate) Condition() model.Condition { return model.ConditionVerification }

// Verify moves a closed gate to pending. Calling it again while pending or
// open does not restart the delay.
func (p VerificationGate) Verify(gate model.GateState, now time.Time) model.GateState {
	if gate.Verify != model.VerifyClosed && gate.Verify != "" {
		return p.resolve(gate, now)
	}
	gate.Verify = model.VerifyPending
	gate.VerifyRequestedAt = now
	return p.resolve(gate, now)
}

// ReadyAt returns when a pending gate opens
func (p VerificationGate) ReadyAt(gate model.GateState) (time.Time, bool) {
	if gate.Verify != model.VerifyPending {
		return time.Time{}, false
	}
	return gate.VerifyRequestedAt.Add(p.Delay), true
}

func (p VerificationGate) resolve(gate model.GateState, now time.Time) model.GateState {
	if at, ok := p.ReadyAt(gate); ok && !now.Before(at) {
		gate.Verify = model.VerifyOpen
	}
	return gate
}

func (p VerificationGate) Enabled(gate model.GateState, now time.Time) bool {
	return p.resolve(gate, now).Verify == model.VerifyOpen
}

func (VerificationGate) Capture(model.GateState) string { return "" }

func (p VerificationGate) Describe(gate model.GateState, now time.Time) model.GateView {
	gate = p.resolve(gate, now)
	view := model.GateView{Enabled: gate.Verify == model.VerifyOpen, Verify: gate.Verify}
	if view.Verify == "" {
		view.Verify = model.VerifyClosed
	}
	if at, ok := p.ReadyAt(gate); ok {
		view.ReadyAt = &at
	}
	return view
}

// JustificationGate keeps the actions closed until a sufficient
// justification is on file for the current item.
type JustificationGate struct {
	Mode     JustificationMode
	MinWords int
	Reasons  []string
}

func (JustificationGate) Condition() model.Condition { return model.ConditionJustification }

// Justify stores the draft for the gate's item. Free text is stored as typed
// even when short; taxonomy reasons must be known labels.
func (p JustificationGate) Justify(gate model.GateState, itemID int, input string) (model.GateState, error) {
	if itemID != gate.ItemID {
		return gate, fmt.Errorf("%w: got item %d, current item is %d", ErrItemMismatch, itemID, gate.ItemID)
	}
	input = strings.TrimSpace(input)
	if p.Mode == JustifyTaxonomy && input != "" && !p.knownReason(input) {
		return gate, fmt.Errorf("%w: %q", ErrUnknownReason, input)
	}
	gate.Justification = input
	return gate, nil
}

func (p JustificationGate) knownReason(reason string) bool {
	for _, r := range p.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

func (p JustificationGate) Enabled(gate model.GateState, _ time.Time) bool {
	if p.Mode == JustifyTaxonomy {
		return gate.Justification != "" && p.knownReason(gate.Justification)
	}
	return CountWords(gate.Justification) >= p.MinWords
}

func (JustificationGate) Capture(gate model.GateState) string { return gate.Justification }

func (p JustificationGate) Describe(gate model.GateState, now time.Time) model.GateView {
	view := model.GateView{
		Enabled:       p.Enabled(gate, now),
		Justification: gate.Justification,
	}
	if p.Mode == JustifyTaxonomy {
		view.Reasons = p.Reasons
		return view
	}
	view.MinWords = p.MinWords
	if needed := p.MinWords - CountWords(gate.Justification); needed > 0 {
		view.WordsNeeded = needed
	}
	return view
}

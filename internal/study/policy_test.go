package study

import (
	"errors"
	"testing"
	"time"

	"frictionstudy/internal/model"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestCountWords(t *testing.T) {
	tests := map[string]int{
		"":                              0,
		"   ":                           0,
		"bad very hateful content here": 5,
		"bad very hateful content":      4,
		"  bad\tvery\n\nhateful  content   here ": 5,
	}
	for in, want := range tests {
		if got := CountWords(in); got != want {
			t.Errorf("CountWords(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestImmediateAlwaysEnabled(t *testing.T) {
	p := Immediate{}
	if !p.Enabled(model.NewGateState(1), t0) {
		t.Fatal("immediate policy should be enabled")
	}
	if p.Capture(model.NewGateState(1)) != "" {
		t.Fatal("immediate policy captures nothing")
	}
}

func TestVerificationGate(t *testing.T) {
	p := VerificationGate{Delay: 3 * time.Second}
	gate := model.NewGateState(7)

	if p.Enabled(gate, t0) {
		t.Fatal("gate should start closed")
	}

	gate = p.Verify(gate, t0)
	if gate.Verify != model.VerifyPending {
		t.Fatalf("expected pending, got %s", gate.Verify)
	}
	if p.Enabled(gate, t0.Add(2999*time.Millisecond)) {
		t.Fatal("gate opened before the delay elapsed")
	}
	if !p.Enabled(gate, t0.Add(3*time.Second)) {
		t.Fatal("gate should open once the delay elapsed")
	}

	view := p.Describe(gate, t0.Add(time.Second))
	if view.Enabled || view.ReadyAt == nil || !view.ReadyAt.Equal(t0.Add(3*time.Second)) {
		t.Fatalf("unexpected pending view %+v", view)
	}

	// a second verify while pending must not restart the delay
	again := p.Verify(gate, t0.Add(2*time.Second))
	if !again.VerifyRequestedAt.Equal(t0) {
		t.Fatalf("verify restarted the delay: %v", again.VerifyRequestedAt)
	}

	// advancing to the next item replaces the gate
	next := model.NewGateState(8)
	if p.Enabled(next, t0.Add(time.Hour)) {
		t.Fatal("fresh gate should be closed")
	}
}

func TestVerificationGateZeroDelay(t *testing.T) {
	p := VerificationGate{}
	gate := p.Verify(model.NewGateState(1), t0)
	if gate.Verify != model.VerifyOpen {
		t.Fatalf("expected open gate, got %s", gate.Verify)
	}
}

func TestJustificationGateFreeText(t *testing.T) {
	p := JustificationGate{Mode: JustifyFreeText, MinWords: 5}
	gate := model.NewGateState(3)

	tests := []struct {
		text    string
		enabled bool
	}{
		{"", false},
		{"bad very hateful content", false},
		{"bad very hateful content here", true},
		{"this one is clearly a targeted insult", true},
	}
	for _, tt := range tests {
		g, err := p.Justify(gate, 3, tt.text)
		if err != nil {
			t.Fatalf("Justify(%q): %v", tt.text, err)
		}
		if got := p.Enabled(g, t0); got != tt.enabled {
			t.Errorf("Enabled with %q = %v, want %v", tt.text, got, tt.enabled)
		}
	}

	g, _ := p.Justify(gate, 3, "bad very hateful")
	if view := p.Describe(g, t0); view.WordsNeeded != 2 || view.MinWords != 5 {
		t.Fatalf("unexpected view %+v", view)
	}

	g, _ = p.Justify(gate, 3, "  bad very hateful content here  ")
	if got := p.Capture(g); got != "bad very hateful content here" {
		t.Fatalf("Capture = %q", got)
	}
}

func TestJustificationGateRejectsOtherItem(t *testing.T) {
	p := JustificationGate{Mode: JustifyFreeText, MinWords: 5}
	_, err := p.Justify(model.NewGateState(3), 2, "bad very hateful content here")
	if !errors.Is(err, ErrItemMismatch) {
		t.Fatalf("expected ErrItemMismatch, got %v", err)
	}
}

func TestJustificationGateTaxonomy(t *testing.T) {
	p := JustificationGate{Mode: JustifyTaxonomy, Reasons: []string{"Direct hate", "Sarcasm"}}
	gate := model.NewGateState(1)

	if p.Enabled(gate, t0) {
		t.Fatal("empty selection should keep the gate closed")
	}
	if _, err := p.Justify(gate, 1, "Because"); !errors.Is(err, ErrUnknownReason) {
		t.Fatalf("expected ErrUnknownReason, got %v", err)
	}
	g, err := p.Justify(gate, 1, "Sarcasm")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Enabled(g, t0) {
		t.Fatal("known reason should open the gate")
	}
	if view := p.Describe(g, t0); len(view.Reasons) != 2 {
		t.Fatalf("expected reasons in view, got %+v", view)
	}
}

func TestNewPoliciesCoversEveryCondition(t *testing.T) {
	policies := NewPolicies(PolicySettings{VerifyDelay: 3 * time.Second, MinWords: 5, JustificationMode: JustifyFreeText})
	for _, c := range model.Conditions {
		p, ok := policies[c]
		if !ok {
			t.Fatalf("no policy for condition %s", c)
		}
		if p.Condition() != c {
			t.Fatalf("policy for %s reports %s", c, p.Condition())
		}
	}
	if _, ok := policies[model.ConditionVerification].(Verifier); !ok {
		t.Fatal("condition B policy should be a Verifier")
	}
	if _, ok := policies[model.ConditionJustification].(Justifier); !ok {
		t.Fatal("condition C policy should be a Justifier")
	}
}

package study

import (
	"testing"

	"frictionstudy/internal/model"
)

func TestRoute(t *testing.T) {
	full := FullLayout()
	minimal := Layout{}

	tests := []struct {
		name   string
		flags  model.Progress
		layout Layout
		want   model.Phase
	}{
		{"fresh session", model.Progress{}, full, model.PhaseConsent},
		{"after consent", model.Progress{ConsentGiven: true}, full, model.PhasePrescreening},
		{"after prescreening", model.Progress{ConsentGiven: true, PrescreeningComplete: true}, full, model.PhaseGuidelines},
		{"in loop", model.Progress{ConsentGiven: true, PrescreeningComplete: true, GuidelinesAcknowledged: true}, full, model.PhaseDecisionLoop},
		{"loop done", model.Progress{ConsentGiven: true, PrescreeningComplete: true, GuidelinesAcknowledged: true, AllItemsDecided: true}, full, model.PhaseSurvey},
		{"all done", model.Progress{ConsentGiven: true, PrescreeningComplete: true, GuidelinesAcknowledged: true, AllItemsDecided: true, SurveySubmitted: true}, full, model.PhaseCompleted},
		{
			"out of order flags still gate on prescreening",
			model.Progress{ConsentGiven: true, AllItemsDecided: true},
			full,
			model.PhasePrescreening,
		},
		{
			"survey flag cannot skip the loop",
			model.Progress{ConsentGiven: true, PrescreeningComplete: true, GuidelinesAcknowledged: true, SurveySubmitted: true},
			full,
			model.PhaseDecisionLoop,
		},
		{"minimal layout goes straight to loop", model.Progress{ConsentGiven: true}, minimal, model.PhaseDecisionLoop},
		{"minimal layout completes after loop", model.Progress{ConsentGiven: true, AllItemsDecided: true}, minimal, model.PhaseCompleted},
		{"consent is never optional", model.Progress{AllItemsDecided: true}, minimal, model.PhaseConsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Route(tt.flags, tt.layout); got != tt.want {
				t.Fatalf("Route() = %s, want %s", got, tt.want)
			}
		})
	}
}

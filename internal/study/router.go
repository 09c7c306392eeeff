// Package study holds the pure rules of the experiment: the phase router,
// the three friction policies and questionnaire validation. Nothing here
// performs I/O; callers pass in the session state and the current time.
package study

import "frictionstudy/internal/model"

// Layout says which optional phases a deployment includes
type Layout struct {
	Prescreening bool `yaml:"prescreening" json:"prescreening"`
	Guidelines   bool `yaml:"guidelines" json:"guidelines"`
	Survey       bool `yaml:"survey" json:"survey"`
}

// FullLayout includes every optional phase (the extended variant)
func FullLayout() Layout {
	return Layout{Prescreening: true, Guidelines: true, Survey: true}
}

type step struct {
	phase   model.Phase
	present bool
	done    bool
}

// Route returns the first phase, in lifecycle order, whose completion flag is
// still false. Phases absent from the layout are skipped. Route keeps no state:
// it must be re-run after every mutation.
func Route(p model.Progress, l Layout) model.Phase {
	steps := []step{
		{model.PhaseConsent, true, p.ConsentGiven},
		{model.PhasePrescreening, l.Prescreening, p.PrescreeningComplete},
		{model.PhaseGuidelines, l.Guidelines, p.GuidelinesAcknowledged},
		{model.PhaseDecisionLoop, true, p.AllItemsDecided},
		{model.PhaseSurvey, l.Survey, p.SurveySubmitted},
	}
	for _, s := range steps {
		if s.present && !s.done {
			return s.phase
		}
	}
	return model.PhaseCompleted
}

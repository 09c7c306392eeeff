package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"frictionstudy/internal/model"
	"frictionstudy/internal/study"
)

// FailureMode decides what a failed Response append does to the session
type FailureMode string

const (
	// FailureBlock keeps the participant on the item until the append succeeds
	FailureBlock FailureMode = "block"
	// FailureContinue shows the error but still advances to the next item
	FailureContinue FailureMode = "continue"
)

// Study is the deployment variant: which phases run, how the friction
// policies behave and the questionnaire options.
type Study struct {
	Phases          study.Layout         `yaml:"phases"`
	Policy          study.PolicySettings `yaml:"policy"`
	Questionnaire   study.Questionnaire  `yaml:"questionnaire"`
	ResponseFailure FailureMode          `yaml:"responseFailure"`
	Guidelines      string               `yaml:"guidelines"`
}

const defaultGuidelines = `1. Direct Hate: Statements explicitly attacking a group are Toxic.
2. Sarcasm: Using positive words to mock a group is Toxic.
3. Reporting: Quoting a slur to complain about it is Safe.
4. Self-Referential: Using a slur to describe oneself (reclaiming) is Safe.
5. Neutral: Opinions about non-protected topics (food, weather) are Safe.

You have to approve or reject the AI's suggestion based on these rules.`

// DefaultStudy returns the extended variant with every phase enabled
func DefaultStudy() *Study {
	return &Study{
		Phases: study.FullLayout(),
		Policy: study.PolicySettings{
			VerifyDelay:       3 * time.Second,
			MinWords:          5,
			JustificationMode: study.JustifyFreeText,
			Reasons: []string{
				"Direct hate",
				"Sarcasm",
				"Reporting",
				"Self-referential",
				"Neutral",
			},
		},
		Questionnaire: study.Questionnaire{
			AgeMin:            18,
			AgeMax:            99,
			LikertMin:         1,
			LikertMax:         7,
			PrescreeningItems: model.PrescreeningLikertItems,
			SurveyItems:       model.SurveyLikertItems,
			Genders:           []string{"Female", "Male", "Non-binary", "Prefer not to say", "Other"},
			Statuses:          []string{"Student", "Professional", "Other"},
			StudentStatus:     "Student",
			FieldsOfStudy: []string{
				"Computer Science / IT", "Business / Economics", "Engineering", "Psychology",
				"Medicine / Health Sciences", "Law", "Education", "Biology / Life Sciences",
				"Arts / Humanities", "Social Sciences", "Physics / Mathematics",
				"Communications / Media", "Political Science", "Design / Architecture",
				"History", "Other",
			},
			UsageFrequencies:  []string{"Never", "Less than Monthly", "Monthly", "Weekly", "Daily", "Multiple times a day"},
			VerifyFrequencies: []string{"Never", "Rarely", "Sometimes", "Often", "Always"},
		},
		ResponseFailure: FailureBlock,
		Guidelines:      defaultGuidelines,
	}
}

// LoadStudy overlays a YAML file on DefaultStudy. An empty path returns the
// defaults unchanged.
func LoadStudy(path string) (*Study, error) {
	s := DefaultStudy()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("study config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("study config: parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("study config: %w", err)
	}
	return s, nil
}

// Validate rejects settings no session could run under
func (s *Study) Validate() error {
	var errs []error
	if s.Policy.VerifyDelay < 0 {
		errs = append(errs, errors.New("policy.verifyDelay must not be negative"))
	}
	switch s.Policy.JustificationMode {
	case study.JustifyFreeText:
		if s.Policy.MinWords < 1 {
			errs = append(errs, errors.New("policy.minWords must be at least 1"))
		}
	case study.JustifyTaxonomy:
		if len(s.Policy.Reasons) == 0 {
			errs = append(errs, errors.New("policy.reasons must not be empty in taxonomy mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("policy.justificationMode %q is not supported", s.Policy.JustificationMode))
	}
	switch s.ResponseFailure {
	case FailureBlock, FailureContinue:
	default:
		errs = append(errs, fmt.Errorf("responseFailure %q is not supported", s.ResponseFailure))
	}
	q := s.Questionnaire
	if q.LikertMin >= q.LikertMax {
		errs = append(errs, errors.New("questionnaire likert range is empty"))
	}
	// row widths are fixed by the stream layouts
	if q.PrescreeningItems != model.PrescreeningLikertItems {
		errs = append(errs, fmt.Errorf("questionnaire.prescreeningItems must be %d", model.PrescreeningLikertItems))
	}
	if q.SurveyItems != model.SurveyLikertItems {
		errs = append(errs, fmt.Errorf("questionnaire.surveyItems must be %d", model.SurveyLikertItems))
	}
	return errors.Join(errs...)
}

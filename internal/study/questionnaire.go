package study

import (
	"fmt"
	"strings"

	"frictionstudy/internal/model"
)

// Questionnaire holds the fixed answer options of the prescreening and
// post-task survey screens.
type Questionnaire struct {
	AgeMin            int      `yaml:"ageMin" json:"ageMin"`
	AgeMax            int      `yaml:"ageMax" json:"ageMax"`
	LikertMin         int      `yaml:"likertMin" json:"likertMin"`
	LikertMax         int      `yaml:"likertMax" json:"likertMax"`
	PrescreeningItems int      `yaml:"prescreeningItems" json:"prescreeningItems"`
	SurveyItems       int      `yaml:"surveyItems" json:"surveyItems"`
	Genders           []string `yaml:"genders" json:"genders"`
	Statuses          []string `yaml:"statuses" json:"statuses"`
	StudentStatus     string   `yaml:"studentStatus" json:"studentStatus"`
	FieldsOfStudy     []string `yaml:"fieldsOfStudy" json:"fieldsOfStudy"`
	UsageFrequencies  []string `yaml:"usageFrequencies" json:"usageFrequencies"`
	VerifyFrequencies []string `yaml:"verifyFrequencies" json:"verifyFrequencies"`
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func (q Questionnaire) checkLikert(verr *ValidationError, field string, answers []int, want int) {
	if len(answers) != want {
		verr.add(field, fmt.Sprintf("expected %d ratings, got %d", want, len(answers)))
		return
	}
	for i, a := range answers {
		if a < q.LikertMin || a > q.LikertMax {
			verr.add(fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("must be between %d and %d", q.LikertMin, q.LikertMax))
		}
	}
}

// ValidatePrescreening checks demographic answers. A field of study is
// required only from students; it is cleared for everyone else.
func (q Questionnaire) ValidatePrescreening(a *model.PrescreeningAnswers) error {
	verr := &ValidationError{}
	if a.Age < q.AgeMin || a.Age > q.AgeMax {
		verr.add("age", fmt.Sprintf("must be between %d and %d", q.AgeMin, q.AgeMax))
	}
	if !oneOf(a.Gender, q.Genders) {
		verr.add("gender", "unknown option")
	}
	if !oneOf(a.Status, q.Statuses) {
		verr.add("status", "unknown option")
	}
	a.FieldOfStudy = strings.TrimSpace(a.FieldOfStudy)
	if a.Status == q.StudentStatus {
		if a.FieldOfStudy == "" {
			verr.add("fieldOfStudy", "please enter your field of study")
		}
	} else {
		a.FieldOfStudy = ""
	}
	q.checkLikert(verr, "likert", a.Likert, q.PrescreeningItems)
	if !oneOf(a.UsageFrequency, q.UsageFrequencies) {
		verr.add("usageFrequency", "unknown option")
	}
	if !oneOf(a.VerifyFrequency, q.VerifyFrequencies) {
		verr.add("verifyFrequency", "unknown option")
	}
	return verr.orNil()
}

// ValidateSurvey checks the post-task Likert answers
func (q Questionnaire) ValidateSurvey(answers []int) error {
	verr := &ValidationError{}
	q.checkLikert(verr, "answers", answers, q.SurveyItems)
	return verr.orNil()
}

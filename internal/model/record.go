package model

// Stream names one append-only destination in the backing store
type Stream string

const (
	StreamResponses    Stream = "Responses"
	StreamPrescreening Stream = "Prescreening"
	StreamSurvey       Stream = "Survey"
)

// NotApplicable is written in place of an absent justification
const NotApplicable = "N/A"

const (
	PrescreeningLikertItems = 3
	SurveyLikertItems       = 6
)

// StreamColumns is the fixed row layout of every stream
var StreamColumns = map[Stream][]string{
	StreamResponses: {
		"session_id", "timestamp", "condition",
		"item_id", "item_text", "ai_suggestion", "decision", "justification",
	},
	StreamPrescreening: {
		"session_id", "timestamp", "condition",
		"age", "gender", "status", "field_of_study",
		"likert_1", "likert_2", "likert_3",
		"usage_frequency", "verify_frequency",
	},
	StreamSurvey: {
		"session_id", "timestamp", "condition",
		"likert_1", "likert_2", "likert_3", "likert_4", "likert_5", "likert_6",
	},
}

// Record is anything that can be appended to a stream as one row
type Record interface {
	Stream() Stream
	Row() []interface{}
}

// ResponseRecord is one decision on one item
type ResponseRecord struct {
	SessionID     string
	Timestamp     string
	Condition     Condition
	ItemID        int
	ItemText      string
	AISuggestion  Suggestion
	Decision      Decision
	Justification string
}

func (r ResponseRecord) Stream() Stream { return StreamResponses }

func (r ResponseRecord) Row() []interface{} {
	justification := r.Justification
	if justification == "" {
		justification = NotApplicable
	}
	return []interface{}{
		r.SessionID, r.Timestamp, string(r.Condition),
		r.ItemID, r.ItemText, string(r.AISuggestion), string(r.Decision), justification,
	}
}

// PrescreeningAnswers is what the participant submits on the prescreening screen
type PrescreeningAnswers struct {
	Age             int    `json:"age"`
	Gender          string `json:"gender"`
	Status          string `json:"status"`
	FieldOfStudy    string `json:"fieldOfStudy"`
	Likert          []int  `json:"likert"`
	UsageFrequency  string `json:"usageFrequency"`
	VerifyFrequency string `json:"verifyFrequency"`
}

// PrescreeningRecord is the demographic row
type PrescreeningRecord struct {
	SessionID string
	Timestamp string
	Condition Condition
	Answers   PrescreeningAnswers
}

func (r PrescreeningRecord) Stream() Stream { return StreamPrescreening }

// Row expects Answers to have passed validation (three Likert values)
func (r PrescreeningRecord) Row() []interface{} {
	a := r.Answers
	return []interface{}{
		r.SessionID, r.Timestamp, string(r.Condition),
		a.Age, a.Gender, a.Status, a.FieldOfStudy,
		a.Likert[0], a.Likert[1], a.Likert[2],
		a.UsageFrequency, a.VerifyFrequency,
	}
}

// SurveyRecord is the post-task questionnaire row
type SurveyRecord struct {
	SessionID string
	Timestamp string
	Condition Condition
	Answers   []int
}

func (r SurveyRecord) Stream() Stream { return StreamSurvey }

func (r SurveyRecord) Row() []interface{} {
	row := []interface{}{r.SessionID, r.Timestamp, string(r.Condition)}
	for _, a := range r.Answers {
		row = append(row, a)
	}
	return row
}

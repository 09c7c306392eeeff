package model

// ConditionStats counts sessions and decisions for one condition
type ConditionStats struct {
	Started   int64 `json:"started"`
	Decisions int64 `json:"decisions"`
	Completed int64 `json:"completed"`
}

// StudyStats is the monitor's overview of the running study
type StudyStats struct {
	Conditions          map[Condition]*ConditionStats `json:"conditions"`
	PersistenceFailures map[Stream]int64              `json:"persistenceFailures"`
}

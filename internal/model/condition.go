package model

// Condition is the friction policy a participant is assigned for the whole session
type Condition string

const (
	ConditionImmediate     Condition = "A" // No friction
	ConditionVerification  Condition = "B" // Placebo verification wait
	ConditionJustification Condition = "C" // Written justification required
)

// Conditions lists every assignable condition in a fixed order
var Conditions = []Condition{ConditionImmediate, ConditionVerification, ConditionJustification}

// Valid reports whether c is one of the assignable conditions
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

package service

// Broadcaster pushes events to connected clients (avoids import cycle with ws)
type Broadcaster interface {
	// BroadcastToSession reaches the participant's own connection
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	// BroadcastToMonitor reaches researchers watching progress
	BroadcastToMonitor(msgType string, payload interface{})
}

// Event types pushed through the Broadcaster
const (
	EventSessionStarted  = "session_started"
	EventPhaseChanged    = "phase_changed"
	EventDecisionSaved   = "decision_saved"
	EventVerifyComplete  = "verification_complete"
	EventPersistenceFail = "persistence_failed"
)

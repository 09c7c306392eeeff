package ws

import (
	"encoding/json"
	"log"
	"sync"

	"frictionstudy/internal/service"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Participant message types
const (
	MsgPhaseChanged         = MessageType(service.EventPhaseChanged)
	MsgVerificationComplete = MessageType(service.EventVerifyComplete)
)

// Monitor message types
const (
	MsgSessionStarted    = MessageType(service.EventSessionStarted)
	MsgDecisionSaved     = MessageType(service.EventDecisionSaved)
	MsgPersistenceFailed = MessageType(service.EventPersistenceFail)
	MsgParticipantOnline MessageType = "participant_online"
	MsgParticipantLeft   MessageType = "participant_left"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages participant and monitor WebSocket connections
type Hub struct {
	// sessionID -> open tabs of that participant
	sessionConns map[string]map[*Connection]bool
	monitorConns map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string // Empty for monitor connections
	IsMonitor bool
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID string
	ToMonitor bool
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		sessionConns: make(map[string]map[*Connection]bool),
		monitorConns: make(map[*Connection]bool),
		register:     make(chan *Connection),
		unregister:   make(chan *Connection),
		broadcast:    make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsMonitor {
				h.monitorConns[conn] = true
				log.Printf("Monitor connected (%d open)", len(h.monitorConns))
			} else {
				if h.sessionConns[conn.SessionID] == nil {
					h.sessionConns[conn.SessionID] = make(map[*Connection]bool)
				}
				h.sessionConns[conn.SessionID][conn] = true
				log.Printf("Participant %s connected", conn.SessionID)
				h.notifyMonitors(MsgParticipantOnline, conn.SessionID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsMonitor {
				if h.monitorConns[conn] {
					delete(h.monitorConns, conn)
					close(conn.Send)
					log.Printf("Monitor disconnected")
				}
			} else if conns, ok := h.sessionConns[conn.SessionID]; ok && conns[conn] {
				delete(conns, conn)
				close(conn.Send)
				if len(conns) == 0 {
					delete(h.sessionConns, conn.SessionID)
				}
				log.Printf("Participant %s disconnected", conn.SessionID)
				h.notifyMonitors(MsgParticipantLeft, conn.SessionID)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			targets := h.monitorConns
			if !msg.ToMonitor {
				targets = h.sessionConns[msg.SessionID]
			}
			for conn := range targets {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToSession sends a message to every tab of one participant (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToMonitor sends a message to every researcher monitor (implements service.Broadcaster)
func (h *Hub) BroadcastToMonitor(msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		ToMonitor: true,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// caller holds h.mu
func (h *Hub) notifyMonitors(msgType MessageType, sessionID string) {
	payload, _ := json.Marshal(map[string]string{"sessionId": sessionID})
	data, _ := json.Marshal(&Message{Type: msgType, Payload: payload})
	for conn := range h.monitorConns {
		select {
		case conn.Send <- data:
		default:
		}
	}
}

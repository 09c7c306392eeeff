package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims binding a participant's requests to one session
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// StartSessionResponse is returned when a participant opens the study
type StartSessionResponse struct {
	SessionID string       `json:"sessionId"`
	Condition Condition    `json:"condition"`
	Token     string       `json:"token"`
	View      *SessionView `json:"view"`
}

package service

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionBusy       = errors.New("session is handling another action")
	ErrSessionCompleted  = errors.New("session is completed")
	ErrWrongPhase        = errors.New("action not available in the current phase")
	ErrGateClosed        = errors.New("decision actions are not enabled yet")
	ErrActionUnsupported = errors.New("action not available for this condition")
	ErrConsentRequired   = errors.New("consent is required to participate")
	ErrPersistence       = errors.New("could not save your answer")
)

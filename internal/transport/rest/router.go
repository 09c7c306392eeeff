package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"frictionstudy/internal/service"
	"frictionstudy/internal/transport/rest/handler"
	"frictionstudy/internal/transport/rest/middleware"
	"frictionstudy/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService  *service.AuthService
	StudyService *service.StudyService
	WSHub        *ws.Hub
	MonitorKey   string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.StudyService)
	monitorHandler := handler.NewMonitorHandler(c.StudyService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.MonitorKey)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)
	r.Use(middleware.RequestID)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/session", wsHandler.SessionWS).Methods("GET")
	v1.HandleFunc("/ws/monitor", wsHandler.MonitorWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Participant routes (require session token)
	sessionRoutes := v1.PathPrefix("/session").Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("", sessionHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/consent", sessionHandler.Consent).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/prescreening", sessionHandler.Prescreening).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/guidelines", sessionHandler.Guidelines).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/verify", sessionHandler.Verify).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/justification", sessionHandler.Justify).Methods("PUT", "OPTIONS")
	sessionRoutes.HandleFunc("/decisions", sessionHandler.Decide).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/survey", sessionHandler.Survey).Methods("POST", "OPTIONS")

	// Researcher routes (require monitor key)
	monitorRoutes := v1.PathPrefix("/monitor").Subrouter()
	monitorRoutes.Use(middleware.RequireMonitorKey(c.MonitorKey))

	monitorRoutes.HandleFunc("/stats", monitorHandler.Stats).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization, X-Request-ID, X-Monitor-Key"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

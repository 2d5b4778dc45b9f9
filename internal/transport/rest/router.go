package rest

import (
	"net/http"

	"formbuilder/internal/metrics"
	"formbuilder/internal/service"
	"formbuilder/internal/transport/rest/handler"
	"formbuilder/internal/transport/rest/middleware"
	"formbuilder/internal/transport/ws"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	FormService       *service.FormService
	GenerationTracker *service.GenerationTracker
	FillService       *service.FillService
	ResponsesService  *service.ResponsesService
	ViewService       *service.ViewService
	WSHub             *ws.Hub
	Metrics           *metrics.Metrics
	Logger            *zap.Logger
	AllowedOrigins    string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	formHandler := handler.NewFormHandler(c.FormService)
	generationHandler := handler.NewGenerationHandler(c.GenerationTracker)
	fillHandler := handler.NewFillHandler(c.FillService)
	responsesHandler := handler.NewResponsesHandler(c.ResponsesService)
	viewHandler := handler.NewViewHandler(c.ViewService)
	wsHandler := ws.NewHandler(c.WSHub, c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.NewRequestLogger(c.Logger, c.Metrics).Handler)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/themes", formHandler.Themes).Methods("GET", "OPTIONS")

	// Builder
	v1.HandleFunc("/form", formHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/form", formHandler.Patch).Methods("PATCH", "OPTIONS")
	v1.HandleFunc("/form/header-image", formHandler.PutHeaderImage).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/form/header-image", formHandler.DeleteHeaderImage).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/form/questions", formHandler.AddQuestion).Methods("POST", "OPTIONS")
	v1.HandleFunc("/form/questions/{questionId}", formHandler.UpdateQuestion).Methods("PATCH", "OPTIONS")
	v1.HandleFunc("/form/questions/{questionId}", formHandler.RemoveQuestion).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/form/questions/{questionId}/options", formHandler.AddOption).Methods("POST", "OPTIONS")
	v1.HandleFunc("/form/questions/{questionId}/options/{optionId}", formHandler.UpdateOption).Methods("PATCH", "OPTIONS")
	v1.HandleFunc("/form/questions/{questionId}/options/{optionId}", formHandler.RemoveOption).Methods("DELETE", "OPTIONS")

	// AI generation
	v1.HandleFunc("/form/generation", generationHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/form/generation", generationHandler.State).Methods("GET", "OPTIONS")

	// View selection and sharing
	v1.HandleFunc("/view", viewHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/view", viewHandler.Put).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/share", viewHandler.Share).Methods("GET", "OPTIONS")

	// Fill-in
	v1.HandleFunc("/fill/sessions", fillHandler.StartSession).Methods("POST", "OPTIONS")
	v1.HandleFunc("/fill/sessions/{sessionId}", fillHandler.GetSession).Methods("GET", "OPTIONS")
	v1.HandleFunc("/fill/sessions/{sessionId}/answers/{questionId}", fillHandler.SetAnswer).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/fill/sessions/{sessionId}/answers/{questionId}/toggle", fillHandler.ToggleOption).Methods("POST", "OPTIONS")
	v1.HandleFunc("/fill/sessions/{sessionId}/submit", fillHandler.Submit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/fill/sessions/{sessionId}/reset", fillHandler.Reset).Methods("POST", "OPTIONS")
	v1.HandleFunc("/submissions", fillHandler.SubmitAnswers).Methods("POST", "OPTIONS")

	// Responses
	v1.HandleFunc("/responses", responsesHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/responses.csv", responsesHandler.CSV).Methods("GET", "OPTIONS")

	// Live events
	v1.HandleFunc("/ws", wsHandler.Subscribe).Methods("GET")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

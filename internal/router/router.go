package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studybuddy-backend/internal/handlers"
	"studybuddy-backend/internal/middleware"
	"studybuddy-backend/internal/websocket"
)

func New(
	questionHandler *handlers.QuestionHandler,
	sessionHandler *handlers.SessionHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Generation endpoints are expensive LLM calls (20 req/min per IP)
	generateLimiter := middleware.NewRateLimiter(20, time.Minute)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Study Buddy API is running"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Upload & Question Generation ────
		r.Group(func(r chi.Router) {
			r.Use(generateLimiter.Middleware)
			r.Post("/upload-pdf", questionHandler.Upload)
			r.Post("/generate-questions", questionHandler.Generate)
			r.Post("/upload-and-generate", questionHandler.UploadAndGenerate)
		})
		r.Get("/health-impacts", questionHandler.HealthImpacts)

		// ──── Pet/Quiz Sessions ────
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/{id}", sessionHandler.Get)
			r.Post("/{id}/choose", sessionHandler.Choose)
			r.Post("/{id}/advance", sessionHandler.Advance)
			r.Post("/{id}/feed", sessionHandler.Feed)
			r.Post("/{id}/continue", sessionHandler.Continue)
			r.Delete("/{id}", sessionHandler.Delete)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}

// Package api exposes study sessions, the dictionary and deck progress over HTTP.
package api

import (
	"net/http"

	"hanzi/internal/metrics"
	"hanzi/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Server holds the HTTP handlers
type Server struct {
	study    *service.StudyService
	chars    *service.CharacterService
	progress *service.ProgressService
	auth     *service.AuthService
	metrics  *metrics.Collector
	validate *validator.Validate
	logger   *zap.Logger
}

// NewServer creates a new HTTP API server
func NewServer(
	study *service.StudyService,
	chars *service.CharacterService,
	progress *service.ProgressService,
	auth *service.AuthService,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Server {
	return &Server{
		study:    study,
		chars:    chars,
		progress: progress,
		auth:     auth,
		metrics:  collector,
		validate: validator.New(),
		logger:   logger,
	}
}

// Router builds the route tree. allowedOrigins configures CORS; when it is
// empty no cross-origin request is allowed.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}
	// cors treats an empty list as "allow all"
	if len(allowedOrigins) == 0 {
		corsOptions.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(cors.Handler(corsOptions))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.startSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.endSession)
				r.Post("/reveal", s.reveal)
				r.Get("/preview", s.preview)
				r.Post("/grades", s.submitGrade)
				r.Get("/stats", s.stats)
			})
		})

		r.Route("/characters", func(r chi.Router) {
			r.Get("/", s.searchCharacters)
			r.Get("/random", s.randomCharacter)
			r.Get("/favorites", s.favorites)
			r.Get("/hsk/{level}", s.byHSKLevel)
			r.Get("/{character}", s.getCharacter)
			r.Post("/{character}/favorite", s.toggleFavorite)
		})

		r.Get("/progress", s.getProgress)
		r.With(requirePassword(s.auth, s.logger)).Post("/progress/reset", s.resetProgress)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

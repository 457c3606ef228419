package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/path-finder/backend/internal/handler/chat"
	"github.com/zhouzirui/path-finder/backend/internal/handler/cv"
	"github.com/zhouzirui/path-finder/backend/internal/handler/fact"
	"github.com/zhouzirui/path-finder/backend/internal/handler/profile"
	"github.com/zhouzirui/path-finder/backend/internal/handler/quiz"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/middleware"
	profileModel "github.com/zhouzirui/path-finder/backend/internal/model/profile"
	chatService "github.com/zhouzirui/path-finder/backend/internal/service/chat"
	cvService "github.com/zhouzirui/path-finder/backend/internal/service/cv"
	factService "github.com/zhouzirui/path-finder/backend/internal/service/fact"
	quizService "github.com/zhouzirui/path-finder/backend/internal/service/quiz"
	"github.com/zhouzirui/path-finder/backend/pkg/utils"
)

// Dependencies are the services and settings the router needs.
type Dependencies struct {
	Profiles       profileModel.Store
	Chat           *chatService.Service
	Quiz           *quizService.Service
	CV             *cvService.Service
	Facts          *factService.Service
	JWTSecret      string
	AllowedOrigins []string
	Limiter        *middleware.RateLimiter
	Logger         *logger.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(deps.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var limit func(http.Handler) http.Handler
	if deps.Limiter != nil {
		limit = deps.Limiter.Middleware
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Auth(deps.JWTSecret, log))

		profile.New(deps.Profiles, log).RegisterRoutes(api)
		chat.New(deps.Chat, limit, log).RegisterRoutes(api)
		quiz.New(deps.Quiz, deps.Limiter, deps.AllowedOrigins, log).RegisterRoutes(api)
		cv.New(deps.CV, limit, log).RegisterRoutes(api)
		fact.New(deps.Facts, limit, log).RegisterRoutes(api)
	})

	return r
}

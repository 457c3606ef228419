package quiz

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/path-finder/backend/internal/handler/apierror"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/middleware"
	"github.com/zhouzirui/path-finder/backend/internal/model/quiz"
	quizService "github.com/zhouzirui/path-finder/backend/internal/service/quiz"
	"github.com/zhouzirui/path-finder/backend/pkg/utils"
)

// Handler exposes the career quiz over HTTP and websocket.
type Handler struct {
	quizSvc  *quizService.Service
	limit    func(http.Handler) http.Handler
	limiter  *middleware.RateLimiter
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// New creates the quiz handler. limiter may be nil. allowedOrigins restricts which browser
// origins may open the quiz socket; empty allows any.
func New(quizSvc *quizService.Service, limiter *middleware.RateLimiter, allowedOrigins []string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	limit := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		limit = limiter.Middleware
	}
	return &Handler{
		quizSvc: quizSvc,
		limit:   limit,
		limiter: limiter,
		log:     log.With("handler", "quiz"),
		upgrader: websocket.Upgrader{
			CheckOrigin:     middleware.OriginAllowed(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the quiz routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/quiz", func(r chi.Router) {
		r.With(h.limit).Post("/next", h.handleNext)
		r.Get("/ws", h.handleWebSocket)
		r.Get("/recommendations", h.handleLatest)
	})
}

// stepResponse is the wire form of one quiz round.
type stepResponse struct {
	State           string                `json:"state"`
	Question        string                `json:"question,omitempty"`
	Options         []string              `json:"options,omitempty"`
	Recommendations []quiz.Recommendation `json:"recommendations,omitempty"`
}

func newStepResponse(out quizService.Outcome) stepResponse {
	resp := stepResponse{State: out.State.String(), Recommendations: out.Recommendations}
	if out.Step != nil && !out.Step.IsComplete {
		resp.Question = out.Step.Question
		resp.Options = out.Step.Options
	}
	return resp
}

// handleNext runs one stateless round: the client replays the answered history each time.
func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		History []quiz.Turn `json:"history"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.quizSvc.ResumeSession(payload.History)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.quizSvc.Advance(r.Context(), middleware.UserID(r.Context()), m)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, newStepResponse(out))
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	set, err := h.quizSvc.Latest(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, set)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quizService.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, quizService.ErrQuizComplete):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, quizService.ErrNoPendingQuestion),
		errors.Is(err, quizService.ErrEmptyAnswer),
		errors.Is(err, quizService.ErrInvalidHistory):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		apierror.Respond(w, h.log, err)
	}
}

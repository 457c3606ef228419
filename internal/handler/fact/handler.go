package fact

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/path-finder/backend/internal/handler/apierror"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
	factService "github.com/zhouzirui/path-finder/backend/internal/service/fact"
	"github.com/zhouzirui/path-finder/backend/pkg/utils"
)

// Handler serves career facts.
type Handler struct {
	factSvc *factService.Service
	limit   func(http.Handler) http.Handler
	log     *logger.Logger
}

// New creates the fact handler. limit may be nil.
func New(factSvc *factService.Service, limit func(http.Handler) http.Handler, log *logger.Logger) *Handler {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{factSvc: factSvc, limit: limit, log: log.With("handler", "fact")}
}

// RegisterRoutes registers the fact routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.limit).Get("/facts/career", h.handleCareerFact)
}

func (h *Handler) handleCareerFact(w http.ResponseWriter, r *http.Request) {
	text, err := h.factSvc.CareerFact(r.Context(), r.URL.Query().Get("topic"))
	if err != nil {
		apierror.Respond(w, h.log, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"fact": text})
}

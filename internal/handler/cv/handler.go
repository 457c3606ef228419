package cv

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/path-finder/backend/internal/handler/apierror"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/middleware"
	"github.com/zhouzirui/path-finder/backend/internal/model/cv"
	cvService "github.com/zhouzirui/path-finder/backend/internal/service/cv"
	"github.com/zhouzirui/path-finder/backend/pkg/utils"
)

// Handler exposes the caller's CV.
type Handler struct {
	cvSvc *cvService.Service
	limit func(http.Handler) http.Handler
	log   *logger.Logger
}

// New creates the CV handler. limit guards the rewrite route and may be nil.
func New(cvSvc *cvService.Service, limit func(http.Handler) http.Handler, log *logger.Logger) *Handler {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{cvSvc: cvSvc, limit: limit, log: log.With("handler", "cv")}
}

// RegisterRoutes registers the CV routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/cv", h.handleGet)
	r.Put("/cv", h.handlePut)
	r.With(h.limit).Post("/cv/rewrite", h.handleRewrite)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.cvSvc.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var doc cv.CV
	if err := utils.DecodeJSON(w, r, &doc); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.cvSvc.Save(r.Context(), middleware.UserID(r.Context()), doc)
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, saved)
}

func (h *Handler) handleRewrite(w http.ResponseWriter, r *http.Request) {
	result, err := h.cvSvc.Rewrite(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cvService.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cvService.ErrOwnerRequired):
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
	default:
		apierror.Respond(w, h.log, err)
	}
}

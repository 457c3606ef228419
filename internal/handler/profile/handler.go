package profile

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/middleware"
	"github.com/zhouzirui/path-finder/backend/internal/model/profile"
	"github.com/zhouzirui/path-finder/backend/pkg/utils"
)

// Handler exposes the caller's profile, which personalizes chat.
type Handler struct {
	profiles profile.Store
	log      *logger.Logger
}

// New creates the profile handler.
func New(profiles profile.Store, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{profiles: profiles, log: log.With("handler", "profile")}
}

// RegisterRoutes registers the profile routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.handleGet)
	r.Put("/profile", h.handlePut)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	p, err := h.profiles.Get(r.Context(), userID)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		p = profile.Profile{UserID: userID}
	case err != nil:
		h.log.Error("failed to load profile", "user", userID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := utils.DecodeJSON(w, r, &p); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.UserID = middleware.UserID(r.Context())
	saved, err := h.profiles.Save(r.Context(), p)
	if err != nil {
		h.log.Error("failed to save profile", "user", p.UserID, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	utils.RespondJSON(w, http.StatusOK, saved)
}

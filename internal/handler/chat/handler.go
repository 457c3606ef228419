package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/path-finder/backend/internal/handler/apierror"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/middleware"
	"github.com/zhouzirui/path-finder/backend/internal/model/chat"
	chatService "github.com/zhouzirui/path-finder/backend/internal/service/chat"
	"github.com/zhouzirui/path-finder/backend/internal/service/files"
	"github.com/zhouzirui/path-finder/backend/pkg/utils"
)

// Handler exposes chat channels over HTTP.
type Handler struct {
	chatSvc *chatService.Service
	limit   func(http.Handler) http.Handler
	log     *logger.Logger
}

// New creates the chat handler. limit guards the generation route and may be nil.
func New(chatSvc *chatService.Service, limit func(http.Handler) http.Handler, log *logger.Logger) *Handler {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{chatSvc: chatSvc, limit: limit, log: log.With("handler", "chat")}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chat/{channelID}", func(r chi.Router) {
		r.Get("/", h.handleHistory)
		r.Delete("/", h.handleClear)
		r.With(h.limit).Post("/messages", h.handleSend)
	})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Parts     []chat.Part `json:"parts"`
		UseSearch bool        `json:"useSearch"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := (chat.Message{Parts: payload.Parts}).Validate(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.chatSvc.Send(r.Context(), chatService.SendRequest{
		UserID:    middleware.UserID(r.Context()),
		ChannelID: chi.URLParam(r, "channelID"),
		Parts:     payload.Parts,
		UseSearch: payload.UseSearch,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	conv, err := h.chatSvc.History(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "channelID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, conv)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.Clear(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "channelID")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrUserRequired):
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, chatService.ErrInvalidChannel):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, files.ErrNotFound):
		utils.RespondError(w, http.StatusUnprocessableEntity, "an attachment could not be found")
	case errors.Is(err, files.ErrTooLarge):
		utils.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, files.ErrUnsupportedURI), errors.Is(err, chatService.ErrNoResolver):
		utils.RespondError(w, http.StatusBadRequest, "attachments must be uploaded files")
	default:
		apierror.Respond(w, h.log, err)
	}
}

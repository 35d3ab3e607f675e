package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cropweather-ai/cropweather/internal/api"
	"github.com/cropweather-ai/cropweather/internal/conversation"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = conversation.DefaultSession
	}

	reply, err := h.svc.Answer(r.Context(), sessionID, req.Message, req.Location)
	if err != nil {
		slog.Error("answering chat request", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, Response{Reply: reply})
}

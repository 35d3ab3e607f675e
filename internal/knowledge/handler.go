package knowledge

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cropweather-ai/cropweather/internal/api"
)

// Handler exposes the ingestion endpoint, the HTTP home of the knowledge-base
// loader.
type Handler struct {
	store    Store
	validate *validator.Validate
}

func NewHandler(store Store) *Handler {
	return &Handler{
		store:    store,
		validate: validator.New(),
	}
}

// Index embeds and upserts a batch of documents.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	if err := h.store.Add(r.Context(), req.Documents); err != nil {
		slog.Error("indexing documents", "error", err, "count", len(req.Documents))
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusCreated, IndexResponse{Indexed: len(req.Documents)})
}

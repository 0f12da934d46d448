package seen

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/kahuna/pkg/handlers"
	"github.com/JaimeStill/kahuna/pkg/routes"
)

// Mark is the wire form of a seen mark.
type Mark struct {
	Query      string     `json:"query"`
	UploadTime *time.Time `json:"uploadTime"`
}

type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/seen",
		Description: "Per-query last seen marks",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Get},
			{Method: "POST", Pattern: "", Handler: h.Mark},
		},
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	key := QueryKey(r.URL.Query().Get("query"))

	since, err := h.sys.SeenSince(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Mark{Query: key, UploadTime: since})
}

func (h *Handler) Mark(w http.ResponseWriter, r *http.Request) {
	mark, err := handlers.DecodeJSON[Mark](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if mark.UploadTime == nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(ErrInvalidMark), ErrInvalidMark)
		return
	}

	mark.Query = QueryKey(mark.Query)
	if err := h.sys.MarkSeen(r.Context(), mark.Query, *mark.UploadTime); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mark)
}

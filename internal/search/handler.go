package search

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/internal/seen"
	"github.com/JaimeStill/kahuna/pkg/handlers"
	"github.com/JaimeStill/kahuna/pkg/routes"
	"github.com/google/uuid"
)

// ImageView is a result as shown to the browser.
type ImageView struct {
	images.Image
	Seen bool              `json:"seen"`
	Drag map[string]string `json:"drag,omitempty"`
}

// SessionView is the JSON boundary value of a session. Results holds the
// images passing the cost filter; Total counts the whole result set.
type SessionView struct {
	ID        uuid.UUID   `json:"id"`
	Context   Context     `json:"context"`
	Results   []ImageView `json:"results"`
	Total     int         `json:"total"`
	Exhausted bool        `json:"exhausted"`
	Loading   bool        `json:"loading"`
	Error     string      `json:"error,omitempty"`
	SeenSince *time.Time  `json:"seenSince,omitempty"`
}

type Handler struct {
	sessions *Registry
	seen     seen.System
	logger   *slog.Logger
}

func NewHandler(sessions *Registry, tracker seen.System, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		seen:     tracker,
		logger:   logger,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/search",
		Description: "Incremental image search sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Start},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/more", Handler: h.More},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	sc, err := handlers.DecodeJSON[Context](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id, session := h.sessions.Create()
	if err := session.Start(r.Context(), sc); err != nil {
		h.sessions.Remove(id)
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respond(w, r, http.StatusCreated, id, session.State())
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, session, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respond(w, r, http.StatusOK, id, session.State())
}

func (h *Handler) More(w http.ResponseWriter, r *http.Request) {
	id, session, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := session.More(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respond(w, r, http.StatusOK, id, session.State())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.sessions.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(r *http.Request) (uuid.UUID, *Session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	s, err := h.sessions.Get(id)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return id, s, nil
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, id uuid.UUID, st State) {
	since, err := h.seen.SeenSince(r.Context(), seen.QueryKey(st.Context.Query))
	if err != nil {
		h.logger.Warn("seen mark unavailable", "error", err)
	}

	handlers.RespondJSON(w, status, NewSessionView(id, st, since))
}

// NewSessionView projects st for the browser, flagging results seen at or before since.
func NewSessionView(id uuid.UUID, st State, since *time.Time) SessionView {
	visible := Visible(st.Results, st.Context)

	view := SessionView{
		ID:        id,
		Context:   st.Context,
		Results:   make([]ImageView, len(visible)),
		Total:     len(st.Results),
		Exhausted: st.Exhausted,
		Loading:   st.Loading,
		SeenSince: since,
	}
	if st.Err != nil {
		view.Error = st.Err.Error()
	}

	for i, img := range visible {
		view.Results[i] = ImageView{
			Image: img,
			Seen:  seen.IsSeen(img, since),
			Drag:  images.DragData(&img),
		}
	}
	return view
}

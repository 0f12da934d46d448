package crops

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/pkg/handlers"
	"github.com/JaimeStill/kahuna/pkg/routes"
)

// Gateway is the subset of the media services the crop views need.
type Gateway interface {
	Creator
	Find(ctx context.Context, id string) (images.Image, error)
	CropsFor(ctx context.Context, img images.Image) ([]Crop, error)
}

// CropRequest submits a crop. A nil Coords uses DefaultSelection and a
// nil Aspect uses LandscapeRatio; an Aspect of 0 is freeform.
type CropRequest struct {
	Coords *Selection `json:"coords,omitempty"`
	Aspect *float64   `json:"aspect,omitempty"`
}

// CropView is a crop with its derived key and aspect name.
type CropView struct {
	Crop
	Key    string `json:"key"`
	Aspect Aspect `json:"aspect"`
}

// ImageView is the image page: the image, its crops, and the crop
// selected by the ?crop= key, if any.
type ImageView struct {
	Image    images.Image      `json:"image"`
	Extremes images.Extremes   `json:"extremes"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Priority []string          `json:"priorityMetadata"`
	Crops    []CropView        `json:"crops"`
	Selected *CropView         `json:"crop,omitempty"`
	Drag     map[string]string `json:"drag,omitempty"`
}

// CropResult is returned after a successful submission.
type CropResult struct {
	Crop   CropView `json:"crop"`
	Status Status   `json:"status"`
}

type Handler struct {
	gateway Gateway
	logger  *slog.Logger

	mu        sync.Mutex
	workflows map[string]*Workflow
}

func NewHandler(gw Gateway, logger *slog.Logger) *Handler {
	return &Handler{
		gateway:   gw,
		logger:    logger,
		workflows: map[string]*Workflow{},
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/images",
		Description: "Image view and crop workflow",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/crops", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}/crops/status", Handler: h.Status},
		},
	}
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	img, err := h.gateway.Find(ctx, r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	list, err := h.gateway.CropsFor(ctx, img)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	wf := h.workflow(img, list, true)
	key := r.URL.Query().Get("crop")
	if key != "" {
		if err := wf.Activate(key); err != nil {
			h.logger.Debug("crop selector matched nothing", "image", img.ID, "key", key)
		}
	}

	handlers.RespondJSON(w, http.StatusOK, NewImageView(img, wf.Crops(), key))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := handlers.DecodeJSON[CropRequest](r)
	if err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	wf, err := h.find(r.PathValue("id"))
	if errors.Is(err, ErrNoWorkflow) {
		img, ferr := h.gateway.Find(ctx, r.PathValue("id"))
		if ferr != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(ferr), ferr)
			return
		}
		list, ferr := h.gateway.CropsFor(ctx, img)
		if ferr != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(ferr), ferr)
			return
		}
		wf = h.workflow(img, list, false)
	}

	sel := DefaultSelection
	if req.Coords != nil {
		sel = *req.Coords
	}
	aspect := LandscapeRatio
	if req.Aspect != nil {
		aspect = *req.Aspect
	}

	crop, err := wf.Crop(ctx, sel, aspect)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, CropResult{
		Crop:   NewCropView(crop),
		Status: wf.Status(),
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	wf, err := h.find(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, wf.Status())
}

func (h *Handler) find(id string) (*Workflow, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	wf, ok := h.workflows[id]
	if !ok {
		return nil, ErrNoWorkflow
	}
	return wf, nil
}

// workflow returns the image's workflow, creating it when absent. With
// refresh, an idle workflow is replaced so it reflects list; a workflow
// that is submitting is kept.
func (h *Handler) workflow(img images.Image, list []Crop, refresh bool) *Workflow {
	h.mu.Lock()
	defer h.mu.Unlock()

	if wf, ok := h.workflows[img.ID]; ok {
		if !refresh || wf.Status().State == StateSubmitting {
			return wf
		}
	}

	wf := NewWorkflow(h.gateway, img, list, h.logger)
	h.workflows[img.ID] = wf
	return wf
}

// NewImageView builds the image page for img, selecting the crop with key.
func NewImageView(img images.Image, list []Crop, key string) ImageView {
	view := ImageView{
		Image:    img,
		Extremes: img.ExtremeAssets(),
		Metadata: img.UsefulMetadata(),
		Priority: images.PriorityMetadata,
		Crops:    make([]CropView, len(list)),
		Drag:     images.ImageAndCropsDragData(&img, list),
	}

	for i, c := range list {
		view.Crops[i] = NewCropView(c)
	}

	if key != "" {
		if c, ok := Select(list, key); ok {
			cv := NewCropView(c)
			view.Selected = &cv
		}
	}
	return view
}

// NewCropView derives the key and aspect name of c.
func NewCropView(c Crop) CropView {
	return CropView{
		Crop:   c,
		Key:    c.Key(),
		Aspect: Word(c.Specification.AspectRatio),
	}
}

// Package uploads forwards files posted to the BFF to the Loader.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/pkg/handlers"
	"github.com/JaimeStill/kahuna/pkg/routes"
	"github.com/docker/go-units"
)

// A multipart body may carry up to this many files of the maximum size.
const maxFilesPerUpload = 8

// Loader stores raw image bytes and returns the new image.
type Loader interface {
	Load(ctx context.Context, data []byte) (images.Image, error)
}

// Result is the outcome of one uploaded file. Each file is loaded
// independently, so one failure does not abort the rest.
type Result struct {
	File  string        `json:"file"`
	Size  string        `json:"size"`
	Image *images.Image `json:"image,omitempty"`
	Error string        `json:"error,omitempty"`

	status int
}

// Response lists the per-file results in the order they were posted.
type Response struct {
	Results []Result `json:"results"`
	Loaded  int      `json:"loaded"`
	Failed  int      `json:"failed"`
}

type Handler struct {
	loader        Loader
	logger        *slog.Logger
	maxUploadSize int64
}

func NewHandler(loader Loader, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		loader:        loader,
		logger:        logger.With("handler", "uploads"),
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/uploads",
		Description: "Image upload through the loader",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload},
		},
	}
}

// Upload loads every "file" part of a multipart form. It responds 201
// when all files loaded, 207 when some failed, and the mapped status of
// the failure when the only file failed.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.maxUploadSize * maxFilesPerUpload
	if r.ContentLength > limit {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidForm, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFiles)
		return
	}

	resp := Response{Results: make([]Result, 0, len(files))}
	for _, fh := range files {
		res := h.load(r.Context(), fh)
		if res.Image != nil {
			resp.Loaded++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, res)
	}

	status := http.StatusCreated
	switch {
	case resp.Failed == 0:
	case resp.Loaded == 0 && len(resp.Results) == 1:
		status = resp.Results[0].status
	default:
		status = http.StatusMultiStatus
	}

	handlers.RespondJSON(w, status, resp)
}

func (h *Handler) load(ctx context.Context, fh *multipart.FileHeader) Result {
	res := Result{File: fh.Filename, Size: units.HumanSize(float64(fh.Size))}

	data, err := readFile(fh)
	if err == nil {
		var img images.Image
		img, err = h.loader.Load(ctx, data)
		if err == nil {
			res.Image = &img
			res.status = http.StatusCreated
			return res
		}
	}

	res.status = MapHTTPStatus(err)
	res.Error = err.Error()
	h.logger.Warn("upload failed", "file", fh.Filename, "size", res.Size, "error", err)
	return res
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

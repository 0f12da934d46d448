package crops

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/internal/metrics"
)

// Creator submits crop requests to the cropper service.
type Creator interface {
	CreateCrop(ctx context.Context, img images.Image, rect Rect, token string) (Crop, error)
}

// State is the submission state of a Workflow.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
)

// Status is a snapshot of a Workflow.
type Status struct {
	State     State  `json:"state"`
	ActiveKey string `json:"activeCropKey,omitempty"`
	Err       error  `json:"-"`
	Error     string `json:"error,omitempty"`
}

// Workflow drives crop submission for a single image. At most one
// submission is in flight; a concurrent Crop fails with ErrSubmitting.
type Workflow struct {
	creator Creator
	image   images.Image
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	activeKey string
	crops     []Crop
	err       error
}

// NewWorkflow creates an idle workflow for img with its known crops.
func NewWorkflow(creator Creator, img images.Image, existing []Crop, logger *slog.Logger) *Workflow {
	return &Workflow{
		creator: creator,
		image:   img,
		logger:  logger.With("system", "crops", "image", img.ID),
		state:   StateIdle,
		crops:   slices.Clone(existing),
	}
}

// Crop converts sel to a rect, classifies aspect and submits the request.
// On success the new crop becomes active and joins the collection.
// On failure a *SubmissionError is returned and retained in Status; the
// active key and collection are left as they were.
func (w *Workflow) Crop(ctx context.Context, sel Selection, aspect float64) (Crop, error) {
	rect := sel.Rect()
	if !rect.Valid() {
		return Crop{}, fmt.Errorf("%w: %+v", ErrInvalidSelection, sel)
	}

	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		metrics.RecordCropSubmission("rejected")
		return Crop{}, ErrSubmitting
	}
	w.state = StateSubmitting
	w.err = nil
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.state = StateIdle
		w.mu.Unlock()
	}()

	kind, token := Classify(aspect)
	w.logger.Info("submitting crop", "key", KeyOf(rect), "aspect", kind, "ratio", token)

	crop, err := w.creator.CreateCrop(ctx, w.image, rect, token)
	if err != nil {
		subErr := &SubmissionError{Rect: rect, Err: err}

		w.mu.Lock()
		w.err = subErr
		w.mu.Unlock()

		metrics.RecordCropSubmission("failure")
		w.logger.Warn("crop failed", "key", KeyOf(rect), "error", err)
		return Crop{}, subErr
	}

	w.mu.Lock()
	w.activeKey = crop.Key()
	w.crops = append(w.crops, crop)
	w.mu.Unlock()

	metrics.RecordCropSubmission("success")
	return crop, nil
}

// Activate makes the crop with key active. An empty key clears the selection.
func (w *Workflow) Activate(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if key == "" {
		w.activeKey = ""
		return nil
	}
	if _, ok := Select(w.crops, key); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	w.activeKey = key
	return nil
}

// Status returns the current state snapshot.
func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Status{State: w.state, ActiveKey: w.activeKey, Err: w.err}
	if w.err != nil {
		s.Error = w.err.Error()
	}
	return s
}

// Crops returns a copy of the known crops.
func (w *Workflow) Crops() []Crop {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.crops)
}

// Image returns the image the workflow crops.
func (w *Workflow) Image() images.Image {
	return w.image
}

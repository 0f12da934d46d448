// Package images defines the media library image record and pure helpers
// over it: rendition selection, metadata filtering, and drag data.
package images

import (
	"encoding/json"
	"slices"
	"time"
)

// Cost classifies whether an image is free to use.
type Cost string

// Cost values reported by the media library.
const (
	CostFree Cost = "free"
	CostPaid Cost = "paid"
)

// Dimensions is the pixel size of a rendition.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns width times height.
func (d Dimensions) Area() int {
	return d.Width * d.Height
}

// Asset is one stored rendition of an image.
type Asset struct {
	File       string     `json:"file,omitempty"`
	Dimensions Dimensions `json:"dimensions"`
}

// Image is a media library record. It is treated as immutable once fetched;
// URI is the stable identity used for deduplication.
type Image struct {
	URI        string            `json:"uri"`
	ID         string            `json:"id"`
	UploadTime time.Time         `json:"uploadTime"`
	Cost       Cost              `json:"cost"`
	Assets     []Asset           `json:"assets,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// IsFree reports whether the image may be used without payment.
func (i Image) IsFree() bool {
	return i.Cost == CostFree
}

// Extremes holds the smallest and largest renditions of an image.
type Extremes struct {
	Smallest *Asset `json:"smallest,omitempty"`
	Largest  *Asset `json:"largest,omitempty"`
}

// ExtremeAssets orders renditions by pixel area and returns both ends.
// The receiver's asset slice is not reordered.
func (i Image) ExtremeAssets() Extremes {
	if len(i.Assets) == 0 {
		return Extremes{}
	}

	ordered := slices.Clone(i.Assets)
	slices.SortStableFunc(ordered, func(a, b Asset) int {
		return a.Dimensions.Area() - b.Dimensions.Area()
	})

	return Extremes{
		Smallest: &ordered[0],
		Largest:  &ordered[len(ordered)-1],
	}
}

// IgnoredMetadata lists metadata keys the image view renders elsewhere.
var IgnoredMetadata = []string{"description", "source", "copyright", "keywords"}

// PriorityMetadata lists metadata keys shown first in the image view.
var PriorityMetadata = []string{"byline", "credit"}

// IsUsefulMetadata reports whether key belongs in the generic metadata listing.
func IsUsefulMetadata(key string) bool {
	return !slices.Contains(IgnoredMetadata, key)
}

// UsefulMetadata returns the metadata entries that pass IsUsefulMetadata.
func (i Image) UsefulMetadata() map[string]string {
	out := make(map[string]string, len(i.Metadata))
	for k, v := range i.Metadata {
		if IsUsefulMetadata(k) {
			out[k] = v
		}
	}
	return out
}

// Drag data mime types.
const (
	MimeImage   = "application/vnd.mediaservice.image+json"
	MimeCrops   = "application/vnd.mediaservice.crops+json"
	MimeText    = "text/plain"
	MimeURIList = "text/uri-list"
)

// DragData maps mime types to the values a drag source should carry for img.
// It returns nil when the image has no URI.
func DragData(img *Image) map[string]string {
	if img == nil || img.URI == "" {
		return nil
	}

	encoded, err := json.Marshal(img)
	if err != nil {
		return nil
	}

	return map[string]string{
		MimeImage:   string(encoded),
		MimeText:    img.URI,
		MimeURIList: img.URI,
	}
}

// CropsDragData encodes any crop collection under the crops mime type.
func CropsDragData(crops any) map[string]string {
	encoded, err := json.Marshal(crops)
	if err != nil {
		return nil
	}
	return map[string]string{MimeCrops: string(encoded)}
}

// ImageAndCropsDragData merges the image and crops drag data maps.
func ImageAndCropsDragData(img *Image, crops any) map[string]string {
	out := make(map[string]string)
	for k, v := range DragData(img) {
		out[k] = v
	}
	for k, v := range CropsDragData(crops) {
		out[k] = v
	}
	return out
}

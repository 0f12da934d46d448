package gateway

import (
	"time"

	"github.com/JaimeStill/kahuna/internal/crops"
	"github.com/JaimeStill/kahuna/internal/images"
)

// Media API entities are {"uri": ..., "data": {...}}; collections wrap
// a list of entities under "data".

type entity[T any] struct {
	URI  string `json:"uri"`
	Data T      `json:"data"`
}

type collection[T any] struct {
	Data []entity[T] `json:"data"`
}

type imageData struct {
	ID         string            `json:"id"`
	UploadTime time.Time         `json:"uploadTime"`
	Cost       images.Cost       `json:"cost"`
	Assets     []images.Asset    `json:"assets,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func toImage(e entity[imageData]) images.Image {
	return images.Image{
		URI:        e.URI,
		ID:         e.Data.ID,
		UploadTime: e.Data.UploadTime,
		Cost:       e.Data.Cost,
		Assets:     e.Data.Assets,
		Metadata:   e.Data.Metadata,
	}
}

func toImages(c collection[imageData]) []images.Image {
	out := make([]images.Image, len(c.Data))
	for i, e := range c.Data {
		out[i] = toImage(e)
	}
	return out
}

type cropRequest struct {
	Source      string `json:"source"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

func newCropRequest(img images.Image, rect crops.Rect, token string) cropRequest {
	return cropRequest{
		Source:      img.URI,
		X:           rect.X,
		Y:           rect.Y,
		Width:       rect.Width,
		Height:      rect.Height,
		AspectRatio: token,
	}
}

func toCrops(c collection[crops.Crop]) []crops.Crop {
	out := make([]crops.Crop, len(c.Data))
	for i, e := range c.Data {
		out[i] = e.Data
	}
	return out
}

package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/JaimeStill/kahuna/internal/crops"
)

func TestWrite(t *testing.T) {
	v := struct {
		UploadTime string `json:"uploadTime"`
		Count      int    `json:"count,omitempty"`
	}{UploadTime: "2015-01-01T00:00:00Z"}

	tests := []struct {
		format string
		want   string
	}{
		{formatJSON, `"uploadTime": "2015-01-01T00:00:00Z"`},
		{formatYAML, "uploadTime: \"2015-01-01T00:00:00Z\""},
		{formatText, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := write(&buf, tt.format, v, func(w io.Writer) { io.WriteString(w, "custom") })
			if err != nil {
				t.Fatalf("write() failed: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
			if tt.format != formatText && strings.Contains(buf.String(), "count") {
				t.Error("omitempty field rendered")
			}
		})
	}
}

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		name    string
		want    float64
		wantErr bool
	}{
		{"landscape", crops.LandscapeRatio, false},
		{"portrait", crops.PortraitRatio, false},
		{"freeform", 0, false},
		{"square", 0, true},
	}

	for _, tt := range tests {
		got, err := aspectRatio(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("aspectRatio(%q) = %v, %v", tt.name, got, err)
		}
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

type uploadResult struct {
	File  string        `json:"file"`
	Size  string        `json:"size"`
	Image *images.Image `json:"image,omitempty"`
	Error string        `json:"error,omitempty"`
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload image files through the Loader",
		Long: `Upload sends each file to the Loader independently; a failed file does not
stop the rest. The command fails if any file failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]uploadResult, 0, len(args))
			failed := 0

			for _, path := range args {
				res := uploadResult{File: filepath.Base(path)}

				data, err := os.ReadFile(path)
				if err == nil {
					res.Size = units.HumanSize(float64(len(data)))
					var img images.Image
					img, err = a.gateway.Load(cmd.Context(), data)
					if err == nil {
						res.Image = &img
					}
				}
				if err != nil {
					res.Error = err.Error()
					failed++
				}
				results = append(results, res)
			}

			err := write(cmd.OutOrStdout(), a.output, results, func(w io.Writer) {
				for _, r := range results {
					if r.Image != nil {
						fmt.Fprintf(w, "%s (%s): %s\n", r.File, r.Size, r.Image.URI)
					} else {
						fmt.Fprintf(w, "%s: failed: %s\n", r.File, r.Error)
					}
				}
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(args))
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/JaimeStill/kahuna/internal/crops"
	"github.com/spf13/cobra"
)

func newImageCmd(a *app) *cobra.Command {
	var selected string

	cmd := &cobra.Command{
		Use:   "image <id>",
		Short: "Show an image, its useful metadata and its crops",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			img, err := a.gateway.Find(ctx, args[0])
			if err != nil {
				return err
			}
			list, err := a.gateway.CropsFor(ctx, img)
			if err != nil {
				return err
			}

			view := crops.NewImageView(img, list, selected)
			return write(cmd.OutOrStdout(), a.output, view, func(w io.Writer) {
				printImageView(w, view)
			})
		},
	}

	cmd.Flags().StringVar(&selected, "crop", "", "crop key to select, as x_y_width_height")
	return cmd
}

func printImageView(w io.Writer, view crops.ImageView) {
	img := view.Image
	fmt.Fprintf(w, "%s  %s  %s\n", img.ID, img.Cost, img.URI)
	fmt.Fprintf(w, "uploaded %s\n", img.UploadTime.Format("2006-01-02 15:04:05 MST"))

	if e := view.Extremes; e.Smallest != nil && e.Largest != nil {
		fmt.Fprintf(w, "assets: smallest %dx%d, largest %dx%d\n",
			e.Smallest.Dimensions.Width, e.Smallest.Dimensions.Height,
			e.Largest.Dimensions.Width, e.Largest.Dimensions.Height)
	}

	printed := map[string]bool{}
	for _, key := range view.Priority {
		if v, ok := view.Metadata[key]; ok {
			fmt.Fprintf(w, "  %s: %s\n", key, v)
			printed[key] = true
		}
	}
	rest := make([]string, 0, len(view.Metadata))
	for key := range view.Metadata {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(w, "  %s: %s\n", key, view.Metadata[key])
	}

	fmt.Fprintf(w, "crops: %d\n", len(view.Crops))
	for _, c := range view.Crops {
		marker := " "
		if view.Selected != nil && view.Selected.Key == c.Key {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %s  %s\n", marker, c.Key, c.Aspect)
	}
}

package main

import (
	"fmt"
	"io"

	"github.com/JaimeStill/kahuna/internal/crops"
	"github.com/spf13/cobra"
)

func newCropCmd(a *app) *cobra.Command {
	sel := crops.DefaultSelection
	aspect := string(crops.Landscape)

	cmd := &cobra.Command{
		Use:   "crop <id>",
		Short: "Submit a crop of an image to the Cropper",
		Long: `Crop submits the selection x1,y1 to x2,y2 of an image.

The aspect is landscape (5:3), portrait (3:2) or freeform; freeform crops
send no aspect ratio. The default selection covers the whole image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratio, err := aspectRatio(aspect)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			img, err := a.gateway.Find(ctx, args[0])
			if err != nil {
				return err
			}
			existing, err := a.gateway.CropsFor(ctx, img)
			if err != nil {
				return err
			}

			wf := crops.NewWorkflow(a.gateway, img, existing, a.infra.Logger)
			crop, err := wf.Crop(ctx, sel, ratio)
			if err != nil {
				return err
			}

			result := crops.CropResult{
				Crop:   crops.NewCropView(crop),
				Status: wf.Status(),
			}
			return write(cmd.OutOrStdout(), a.output, result, func(w io.Writer) {
				fmt.Fprintf(w, "created crop %s (%s) of %s\n", result.Crop.Key, result.Crop.Aspect, img.ID)
			})
		},
	}

	cmd.Flags().IntVar(&sel.X1, "x1", sel.X1, "selection left edge")
	cmd.Flags().IntVar(&sel.Y1, "y1", sel.Y1, "selection top edge")
	cmd.Flags().IntVar(&sel.X2, "x2", sel.X2, "selection right edge")
	cmd.Flags().IntVar(&sel.Y2, "y2", sel.Y2, "selection bottom edge")
	cmd.Flags().StringVar(&aspect, "aspect", aspect, "landscape, portrait or freeform")

	return cmd
}

func aspectRatio(name string) (float64, error) {
	switch crops.Aspect(name) {
	case crops.Landscape:
		return crops.LandscapeRatio, nil
	case crops.Portrait:
		return crops.PortraitRatio, nil
	case crops.Freeform:
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown aspect %q", name)
	}
}

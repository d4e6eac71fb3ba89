package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

var (
	snapDevice int
	snapWarmup int
	snapOutput string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture a single frame from a camera and detect text in it",
	RunE: func(cmd *cobra.Command, args []string) error {

		frame, err := captureFrame(snapDevice, snapWarmup)

		if err != nil {
			return err
		}

		defer frame.Close()

		pipeline, pool, err := newPipeline(1)

		if err != nil {
			return err
		}

		defer pool.Close()

		res, err := pipeline.Annotate(cmd.Context(), frame, newStyleStore().Load())

		if err != nil {
			return fmt.Errorf("error annotating snapshot: %w", err)
		}

		defer res.Close()

		return report(res, snapOutput)
	},
}

func init() {
	snapshotCmd.Flags().IntVarP(&snapDevice, "device", "d", 0, "Camera device ID")
	snapshotCmd.Flags().IntVar(&snapWarmup, "warmup", 5, "Frames to discard while the camera adjusts exposure")
	snapshotCmd.Flags().StringVarP(&snapOutput, "output", "o", "snapshot.jpg", "File to save the annotated image to, empty to skip")
	rootCmd.AddCommand(snapshotCmd)
}

// captureFrame opens the camera and returns one frame after discarding the
// warmup frames
func captureFrame(device, warmup int) (gocv.Mat, error) {

	cam, err := gocv.OpenVideoCapture(device)

	if err != nil {
		return gocv.NewMat(), fmt.Errorf("error opening camera %d: %w", device, err)
	}

	defer cam.Close()

	img := gocv.NewMat()

	for i := 0; i <= warmup; i++ {
		if ok := cam.Read(&img); !ok {
			img.Close()
			return gocv.NewMat(), fmt.Errorf("error reading frame from camera %d", device)
		}
	}

	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("camera %d returned an empty frame", device)
	}

	logger.Debugw("Captured snapshot", "device", device,
		"width", img.Cols(), "height", img.Rows())

	return img, nil
}

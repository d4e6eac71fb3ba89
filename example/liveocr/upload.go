package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"github.com/swdee/go-liveocr"
	"gocv.io/x/gocv"
	"os"
)

var uploadOutput string

var uploadCmd = &cobra.Command{
	Use:   "upload <image>",
	Short: "Detect text in an image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		data, err := os.ReadFile(args[0])

		if err != nil {
			return fmt.Errorf("error reading image: %w", err)
		}

		pipeline, pool, err := newPipeline(1)

		if err != nil {
			return err
		}

		defer pool.Close()

		res, err := pipeline.AnnotateBytes(cmd.Context(), data, newStyleStore().Load())

		if err != nil {
			return fmt.Errorf("error annotating %s: %w", args[0], err)
		}

		defer res.Close()

		return report(res, uploadOutput)
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadOutput, "output", "o", "annotated.jpg", "File to save the annotated image to, empty to skip")
	rootCmd.AddCommand(uploadCmd)
}

// report prints the detected texts and saves the annotated frame
func report(res *liveocr.Result, output string) error {

	if res.Warning != nil {
		logger.Warnw("Text detection failed", "error", res.Warning)
	}

	printTexts(res)

	logger.Debugw("Annotation timing",
		"detect", res.Timing.Detection(),
		"total", res.Timing.Total())

	if output == "" {
		return nil
	}

	if ok := gocv.IMWrite(output, res.Frame); !ok {
		return fmt.Errorf("error saving annotated image to %s", output)
	}

	logger.Infow("Saved annotated image", "path", output)

	return nil
}

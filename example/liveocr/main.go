package main

import (
	"context"
	"fmt"
	"github.com/otiai10/gosseract/v2"
	"github.com/spf13/cobra"
	"github.com/swdee/go-liveocr"
	"github.com/swdee/go-liveocr/tesseract"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Options holds the configuration shared by the stream, snapshot and upload
// commands
type Options struct {
	Debug         bool
	Languages     []string
	PageSegMode   int
	Whitelist     string
	HOCR          bool
	PoolSize      int
	DetectTimeout time.Duration
	MinHeight     int
	Threshold     int
	BoxColor      string
	TextColor     string
	BoxThickness  int
	TextThickness int
}

var (
	opts   Options
	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "liveocr",
	Short: "Detect and annotate text in live video, snapshots and images",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(opts.Debug)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {

	defStyle := liveocr.DefaultStyle()
	defParams := liveocr.DefaultPipelineParams()

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flags.StringSliceVarP(&opts.Languages, "lang", "l", []string{"eng"}, "Tesseract languages to load")
	flags.IntVar(&opts.PageSegMode, "psm", int(gosseract.PSM_AUTO), "Tesseract page segmentation mode")
	flags.StringVar(&opts.Whitelist, "whitelist", "", "Restrict recognised characters to this set")
	flags.BoolVar(&opts.HOCR, "hocr", false, "Read word boxes from hOCR output")
	flags.IntVarP(&opts.PoolSize, "pool-size", "s", 2, "Number of Tesseract engines to run")
	flags.DurationVar(&opts.DetectTimeout, "detect-timeout", defParams.DetectTimeout, "Maximum time for text detection on a frame")
	flags.IntVar(&opts.MinHeight, "min-height", 0, "Enlarge frames shorter than this before detection")
	flags.IntVarP(&opts.Threshold, "threshold", "t", defStyle.ConfidenceThreshold, "Confidence threshold 0-100, tokens must score above it")
	flags.StringVar(&opts.BoxColor, "box-color", defStyle.BoxColor.Hex(), "Bounding box color as #RRGGBB")
	flags.StringVar(&opts.TextColor, "text-color", defStyle.TextColor.Hex(), "Label text color as #RRGGBB")
	flags.IntVar(&opts.BoxThickness, "box-thickness", defStyle.BoxThickness, "Bounding box thickness 1-5")
	flags.IntVar(&opts.TextThickness, "text-thickness", defStyle.TextThickness, "Label text thickness 1-3")
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds a development logger when debugging, otherwise a
// production one
func newLogger(debug bool) (*zap.SugaredLogger, error) {

	var (
		l   *zap.Logger
		err error
	)

	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}

	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}

	return l.Sugar(), nil
}

// newStyleStore returns a style store initialised from the command line
func newStyleStore() *liveocr.StyleStore {

	styles := liveocr.NewStyleStore(logger.Named("style"))

	styles.Apply(liveocr.StyleSettings{
		ConfidenceThreshold: &opts.Threshold,
		BoxColor:            &opts.BoxColor,
		TextColor:           &opts.TextColor,
		BoxThickness:        &opts.BoxThickness,
		TextThickness:       &opts.TextThickness,
	})

	return styles
}

// newPipeline creates the Tesseract pool and a pipeline using it.  The
// caller must Close the returned pool
func newPipeline(poolSize int) (*liveocr.Pipeline, *liveocr.Pool, error) {

	params := tesseract.DefaultParams()
	params.Languages = opts.Languages
	params.PageSegMode = gosseract.PageSegMode(opts.PageSegMode)
	params.Whitelist = opts.Whitelist

	if opts.HOCR {
		params.Mode = tesseract.ModeHOCR
	}

	pool, err := tesseract.NewPool(poolSize, params)

	if err != nil {
		return nil, nil, fmt.Errorf("error creating Tesseract pool: %w", err)
	}

	logger.Infow("Created Tesseract pool", "size", pool.Size(),
		"languages", params.Languages, "hocr", opts.HOCR)

	pipeParams := liveocr.DefaultPipelineParams()
	pipeParams.DetectTimeout = opts.DetectTimeout
	pipeParams.MinDetectHeight = opts.MinHeight
	pipeParams.Logger = logger.Named("pipeline")

	return liveocr.NewPipeline(pool, pipeParams), pool, nil
}

// printTexts writes the retained texts one per line
func printTexts(res *liveocr.Result) {

	if len(res.Texts) == 0 {
		fmt.Println("No text detected.")
		return
	}

	for _, text := range res.Texts {
		fmt.Println(text)
	}
}

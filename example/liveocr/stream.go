package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/swdee/go-liveocr"
	"github.com/swdee/go-liveocr/render"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
	"io"
	"net/http"
	"sync"
	"time"
)

// maxStyleBody limits the size of a style update request
const maxStyleBody = 64 * 1024

var streamOpts struct {
	Device    int
	VideoFile string
	Addr      string
	FPS       int
	StyleFile string
	Stats     bool
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Annotate text in live camera or video frames served as MJPEG over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStream(cmd.Context())
	},
}

func init() {
	flags := streamCmd.Flags()
	flags.IntVarP(&streamOpts.Device, "device", "d", 0, "Camera device ID")
	flags.StringVarP(&streamOpts.VideoFile, "video", "v", "", "Video file to loop instead of a camera")
	flags.StringVarP(&streamOpts.Addr, "addr", "a", "localhost:8080", "HTTP Address to run server on, format address:port")
	flags.IntVar(&streamOpts.FPS, "fps", 30, "Frames per second to read from the source")
	flags.StringVar(&streamOpts.StyleFile, "style-file", "", "JSON5 style file to apply and watch for changes")
	flags.BoolVar(&streamOpts.Stats, "stats", false, "Draw processing statistics on the stream")
	rootCmd.AddCommand(streamCmd)
}

// Server connects a frame source to the annotation stream and serves the
// annotated frames and style controls over HTTP
type Server struct {
	stream *liveocr.Stream
	styles *liveocr.StyleStore
	// clients receive each encoded JPEG frame
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	// banner enables drawing stream statistics on frames
	banner bool
}

func runStream(ctx context.Context) error {

	pipeline, pool, err := newPipeline(opts.PoolSize)

	if err != nil {
		return err
	}

	defer pool.Close()

	styles := newStyleStore()

	s := &Server{
		stream:  liveocr.NewStream(pipeline, styles, logger.Named("stream")),
		styles:  styles,
		clients: make(map[chan []byte]struct{}),
		banner:  streamOpts.Stats,
	}

	if err := s.stream.Start(ctx, s.sink); err != nil {
		return err
	}

	defer s.stream.Wait()
	defer s.stream.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", s.Stream)
	mux.HandleFunc("/style", s.Style)
	mux.HandleFunc("/style/reset", s.ResetStyle)
	mux.HandleFunc("/stats", s.Stats)

	srv := &http.Server{
		Addr:    streamOpts.Addr,
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.capture(gctx)
	})

	if streamOpts.StyleFile != "" {
		g.Go(func() error {
			return liveocr.WatchStyleFile(gctx, streamOpts.StyleFile, styles,
				logger.Named("stylefile"))
		})
	}

	g.Go(func() error {
		logger.Infof("Open browser and view video at http://%s/stream", streamOpts.Addr)

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// openSource opens the video file if given, otherwise the camera
func openSource() (*gocv.VideoCapture, error) {

	if streamOpts.VideoFile != "" {
		video, err := gocv.VideoCaptureFile(streamOpts.VideoFile)

		if err != nil {
			return nil, fmt.Errorf("error opening video %s: %w", streamOpts.VideoFile, err)
		}

		return video, nil
	}

	cam, err := gocv.OpenVideoCapture(streamOpts.Device)

	if err != nil {
		return nil, fmt.Errorf("error opening camera %d: %w", streamOpts.Device, err)
	}

	return cam, nil
}

// capture reads frames from the source at the configured rate and pushes
// them to the stream until ctx is done.  A video file is looped
func (s *Server) capture(ctx context.Context) error {

	src, err := openSource()

	if err != nil {
		return err
	}

	defer src.Close()

	fps := max(streamOpts.FPS, 1)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / float64(fps)))
	defer ticker.Stop()

	img := gocv.NewMat()
	defer img.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if ok := src.Read(&img); !ok || img.Empty() {
				if streamOpts.VideoFile == "" {
					return fmt.Errorf("error reading frame from camera %d", streamOpts.Device)
				}

				// last video frame reached so loop back to start of video
				src.Set(gocv.VideoCapturePosFrames, 0)
				continue
			}

			if !s.stream.Push(img) {
				return nil
			}
		}
	}
}

// sink encodes each annotated frame as JPEG and hands it to every client
func (s *Server) sink(res *liveocr.Result) {

	if res.Warning != nil {
		logger.Debugw("Frame annotated without text", "warning", res.Warning)
	}

	if s.banner {
		s.drawStats(&res.Frame, res)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, res.Frame)

	if err != nil {
		logger.Warnw("Error encoding frame", "error", err)
		return
	}

	defer buf.Close()

	// copy out of C memory as clients write it after buf is released
	data := append([]byte(nil), buf.GetBytes()...)

	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.clients {
		select {
		case ch <- data:
		default:
			// client is still sending the previous frame
		}
	}
}

// drawStats adds stream statistics to the top of the image
func (s *Server) drawStats(img *gocv.Mat, res *liveocr.Result) {

	st := s.stream.Stats()

	render.Banner(img, []string{
		fmt.Sprintf("FPS: %.2f, Tokens: %d, Dropped: %d, Failed: %d",
			st.FPS, len(res.Tokens), st.FramesDropped, st.FramesFailed),
		fmt.Sprintf("Detect: %.2fms, Total: %.2fms, Mean: %.2fms",
			float32(res.Timing.Detection())/float32(time.Millisecond),
			float32(res.Timing.Total())/float32(time.Millisecond),
			float32(st.LatencyMean)/float32(time.Millisecond)),
	}, render.BannerFont())
}

// subscribe registers a client for frames
func (s *Server) subscribe() chan []byte {

	ch := make(chan []byte, 1)

	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()

	return ch
}

// unsubscribe removes a client
func (s *Server) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	delete(s.clients, ch)
	s.mu.Unlock()
}

// Stream is the HTTP handler function used to stream video frames to browser
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {

	logger.Infow("New client connection established", "remote", r.RemoteAddr)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	frames := s.subscribe()
	defer s.unsubscribe(frames)

	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-r.Context().Done():
			logger.Infow("Client disconnected", "remote", r.RemoteAddr)
			return

		case data := <-frames:
			// Write the image to the response writer
			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
			w.Write(data)
			w.Write([]byte("\r\n"))

			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// Style returns the current style on GET and applies the settings in the
// request body on POST.  The body may be JSON or JSON5
func (s *Server) Style(w http.ResponseWriter, r *http.Request) {

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, liveocr.SettingsFromStyle(s.styles.Load()))

	case http.MethodPost:
		data, err := io.ReadAll(io.LimitReader(r.Body, maxStyleBody))

		if err != nil {
			http.Error(w, "error reading request", http.StatusBadRequest)
			return
		}

		ss, err := liveocr.ParseStyleSettings(data)

		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		st := s.styles.Apply(ss)
		logger.Infow("Style updated", "style", st)

		writeJSON(w, liveocr.SettingsFromStyle(st))

	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ResetStyle restores the default style
func (s *Server) ResetStyle(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.styles.Reset()
	logger.Infow("Style reset to defaults")

	writeJSON(w, liveocr.SettingsFromStyle(s.styles.Load()))
}

// Stats returns the stream statistics
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.stream.Stats())
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, v any) {

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnw("Error writing response", "error", err)
	}
}

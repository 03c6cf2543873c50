// Package engine drives one chroma-key compositing job end to end:
// validate, probe, decode both inputs, mask/refine/transform/overlay per
// frame, mix audio, mux. One Engine value may run many jobs, but each Run
// call owns all of its buffers; there is no cross-job state.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kartoza/kartoza-chromakey/internal/audio"
	"github.com/kartoza/kartoza-chromakey/internal/chroma"
	"github.com/kartoza/kartoza-chromakey/internal/compositor"
	"github.com/kartoza/kartoza-chromakey/internal/hwaccel"
	"github.com/kartoza/kartoza-chromakey/internal/logging"
	"github.com/kartoza/kartoza-chromakey/internal/media"
	"github.com/kartoza/kartoza-chromakey/internal/models"
)

// Engine holds per-process settings shared by jobs.
type Engine struct {
	FFmpegPath   string
	FFprobePath  string
	WorkDir      string
	AudioBitrate string
	Log          *logging.Logger
}

// New returns an engine with standard tool names resolved from PATH and
// temp files under the system temp directory.
func New(log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		WorkDir:      os.TempDir(),
		AudioBitrate: "192k",
		Log:          log,
	}
}

// Result is the terminal success report of one job.
type Result struct {
	OutputPath      string
	Elapsed         time.Duration
	VideoDuration   float64
	FramesProcessed int
	Width           int
	Height          int
	FPS             float64
}

// Run executes one compositing job. It blocks until the job finishes,
// fails or ctx is cancelled. On any failure after processing starts, the
// partial output is deleted and all resources released before returning.
func (e *Engine) Run(ctx context.Context, opts models.CompositeOptions, progress ProgressFunc) (*Result, error) {
	started := time.Now()
	rep := newProgressReporter(progress)
	rep.report(0, "Validating parameters")

	if err := opts.Validate(); err != nil {
		if pe, ok := err.(*models.ParamError); ok {
			return nil, invalidParam(pe.Field, pe)
		}
		return nil, invalidParam("", err)
	}

	fgInfo, bgInfo, err := e.probeInputs(ctx, opts)
	if err != nil {
		return nil, err
	}
	rep.report(phaseProbeDone, fmt.Sprintf("Probed inputs: background %dx%d @ %.3g fps, %.1fs",
		bgInfo.Width, bgInfo.Height, bgInfo.FPS, bgInfo.Duration))

	if err := checkMemory(fgInfo, bgInfo); err != nil {
		return nil, resourceExhausted(err)
	}

	hw := e.selectAccelerator(ctx, opts)

	maskGen, err := chroma.NewMaskGenerator(opts.Key)
	if err != nil {
		return nil, invalidParam("key_color", err)
	}
	spill := opts.SpillReduction
	if opts.FastMode {
		spill = 0
	}
	refiner := chroma.NewRefiner(maskGen, opts.EdgeBlurRadius, spill)
	transformer := compositor.NewTransformer(opts)

	var logo *compositor.LogoStage
	if opts.Logo != nil {
		logo, err = compositor.NewLogoStage(*opts.Logo, bgInfo.Width, bgInfo.Height)
		if err != nil {
			return nil, unsupportedMedia(err)
		}
	}

	tempDir := filepath.Join(e.WorkDir, "chromakey-"+uuid.NewString())
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempVideo := filepath.Join(tempDir, "video.mp4")
	frames, jobErr := e.runFrameLoop(ctx, opts, fgInfo, bgInfo, hw, maskGen, refiner, transformer, logo, tempVideo, rep)
	if jobErr != nil {
		return nil, jobErr
	}

	videoDuration := float64(frames) / bgInfo.FPS
	rep.report(phaseFramesDone, "Mixing audio")

	track, jobErr := e.mixAudio(ctx, opts, fgInfo, bgInfo, videoDuration)
	if jobErr != nil {
		return nil, jobErr
	}

	rep.report(phaseAudioDone, "Muxing output")
	if err := media.Mux(ctx, e.FFmpegPath, tempVideo, track, opts.OutputPath, e.AudioBitrate); err != nil {
		os.Remove(opts.OutputPath)
		if ctx.Err() != nil {
			return nil, cancelled()
		}
		return nil, encodeFailure(frames, err)
	}

	rep.report(100, "Complete")
	e.Log.Success("Composited %d frames into %s in %s", frames, opts.OutputPath, time.Since(started).Round(time.Millisecond))

	return &Result{
		OutputPath:      opts.OutputPath,
		Elapsed:         time.Since(started),
		VideoDuration:   videoDuration,
		FramesProcessed: frames,
		Width:           bgInfo.Width,
		Height:          bgInfo.Height,
		FPS:             bgInfo.FPS,
	}, nil
}

// PreviewFrame composites the first frame inside the active window and
// returns it without encoding anything, so callers can show what a full
// run would produce.
func (e *Engine) PreviewFrame(ctx context.Context, opts models.CompositeOptions) (*models.Frame, error) {
	if err := opts.Validate(); err != nil {
		if pe, ok := err.(*models.ParamError); ok {
			return nil, invalidParam(pe.Field, pe)
		}
		return nil, invalidParam("", err)
	}

	fgInfo, bgInfo, err := e.probeInputs(ctx, opts)
	if err != nil {
		return nil, err
	}

	maskGen, err := chroma.NewMaskGenerator(opts.Key)
	if err != nil {
		return nil, invalidParam("key_color", err)
	}
	refiner := chroma.NewRefiner(maskGen, opts.EdgeBlurRadius, opts.SpillReduction)
	transformer := compositor.NewTransformer(opts)

	var logo *compositor.LogoStage
	if opts.Logo != nil {
		logo, err = compositor.NewLogoStage(*opts.Logo, bgInfo.Width, bgInfo.Height)
		if err != nil {
			return nil, unsupportedMedia(err)
		}
	}

	hw := hwaccel.Software(opts.FastMode)
	window := activeWindow{start: opts.StartTime, end: opts.EndTime}

	bgReader, err := media.NewFrameReader(ctx, e.FFmpegPath, opts.BackgroundPath, bgInfo.Width, bgInfo.Height, bgInfo.FPS, hw)
	if err != nil {
		return nil, decodeFailure(0, err)
	}
	defer bgReader.Close()

	fgReader, err := media.NewFrameReader(ctx, e.FFmpegPath, opts.ForegroundPath, fgInfo.Width, fgInfo.Height, bgInfo.FPS, hw)
	if err != nil {
		return nil, decodeFailure(0, err)
	}
	defer fgReader.Close()

	for {
		if ctx.Err() != nil {
			return nil, cancelled()
		}
		bgFrame, err := bgReader.Next()
		if err == io.EOF {
			return nil, decodeFailure(bgReader.FramesRead(), fmt.Errorf("no frame inside the active window"))
		}
		if err != nil {
			return nil, decodeFailure(bgReader.FramesRead(), err)
		}
		if !window.active(bgFrame.PTS) {
			continue
		}

		fgFrame, err := fgReader.Next()
		if err != nil && err != io.EOF {
			return nil, decodeFailure(0, err)
		}
		if err == nil {
			mask := make([]uint8, fgInfo.Width*fgInfo.Height)
			maskGen.Generate(fgFrame.Pix, fgFrame.Width, fgFrame.Height, mask)
			refiner.Refine(fgFrame.Pix, mask, fgFrame.Width, fgFrame.Height)
			transformer.Compose(bgFrame, fgFrame, mask)
		}
		if logo != nil {
			logo.Apply(bgFrame, bgFrame.PTS)
		}
		return bgFrame.Clone(), nil
	}
}

// probeInputs probes both inputs concurrently and rejects anything without
// a usable video stream.
func (e *Engine) probeInputs(ctx context.Context, opts models.CompositeOptions) (fg, bg *media.Info, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var perr error
		fg, perr = media.Probe(gctx, e.FFprobePath, opts.ForegroundPath)
		return perr
	})
	g.Go(func() error {
		var perr error
		bg, perr = media.Probe(gctx, e.FFprobePath, opts.BackgroundPath)
		return perr
	})
	if err := g.Wait(); err != nil {
		return nil, nil, unsupportedMedia(err)
	}
	if err := validateStreams(fg, bg); err != nil {
		return nil, nil, err
	}
	return fg, bg, nil
}

// validateStreams rejects probed inputs the frame loop cannot process.
func validateStreams(fg, bg *media.Info) error {
	if !fg.HasVideo {
		return unsupportedMedia(fmt.Errorf("foreground %s has no video stream", fg.Path))
	}
	if !bg.HasVideo {
		return unsupportedMedia(fmt.Errorf("background %s has no video stream", bg.Path))
	}
	if fg.Width <= 0 || fg.Height <= 0 {
		return unsupportedMedia(fmt.Errorf("foreground %s has no usable dimensions", fg.Path))
	}
	if bg.FPS <= 0 || bg.Width <= 0 || bg.Height <= 0 {
		return unsupportedMedia(fmt.Errorf("background %s has no usable dimensions or frame rate", bg.Path))
	}
	return nil
}

// selectAccelerator picks the processing path once per job. GPU detection
// failure is the engine's only graceful degradation: it logs a warning and
// continues on the software path.
func (e *Engine) selectAccelerator(ctx context.Context, opts models.CompositeOptions) *hwaccel.Config {
	if !opts.GPUAccel {
		return hwaccel.Software(opts.FastMode)
	}
	hw, err := hwaccel.Detect(ctx, e.FFmpegPath)
	if err != nil {
		e.Log.Warn("GPU acceleration requested but unavailable, falling back to CPU: %v", err)
		return hwaccel.Software(opts.FastMode)
	}
	e.Log.Info("Using %s hardware acceleration", hw.Accelerator)
	return hw
}

// runFrameLoop decodes both streams in lockstep and writes composited
// frames to the encoder, in strict presentation order.
func (e *Engine) runFrameLoop(
	ctx context.Context,
	opts models.CompositeOptions,
	fgInfo, bgInfo *media.Info,
	hw *hwaccel.Config,
	maskGen *chroma.MaskGenerator,
	refiner *chroma.Refiner,
	transformer *compositor.Transformer,
	logo *compositor.LogoStage,
	tempVideo string,
	rep *progressReporter,
) (int, error) {
	window := activeWindow{start: opts.StartTime, end: opts.EndTime}

	bgReader, err := media.NewFrameReader(ctx, e.FFmpegPath, opts.BackgroundPath, bgInfo.Width, bgInfo.Height, bgInfo.FPS, hw)
	if err != nil {
		return 0, decodeFailure(0, err)
	}
	defer bgReader.Close()

	// The foreground is conformed to the background frame rate so one
	// foreground read corresponds to exactly one output frame.
	fgReader, err := media.NewFrameReader(ctx, e.FFmpegPath, opts.ForegroundPath, fgInfo.Width, fgInfo.Height, bgInfo.FPS, hw)
	if err != nil {
		return 0, decodeFailure(0, err)
	}
	defer fgReader.Close()

	writer, err := media.NewFrameWriter(ctx, e.FFmpegPath, tempVideo, bgInfo.Width, bgInfo.Height, bgInfo.FPS, hw)
	if err != nil {
		return 0, encodeFailure(0, err)
	}

	mask := make([]uint8, fgInfo.Width*fgInfo.Height)
	total := bgInfo.FrameCount
	frameIdx := 0
	fgDone := false

	for {
		// Cancellation is checked between frames; partial output is
		// discarded by the caller's temp dir cleanup.
		if ctx.Err() != nil {
			writer.Abort()
			return frameIdx, cancelled()
		}

		bgFrame, err := bgReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			writer.Abort()
			return frameIdx, decodeFailure(frameIdx, err)
		}

		if window.active(bgFrame.PTS) && !fgDone {
			fgFrame, err := fgReader.Next()
			switch {
			case err == io.EOF:
				// Foreground exhausted before the window closed: the
				// rest of the video is background only.
				fgDone = true
			case err != nil:
				writer.Abort()
				return frameIdx, decodeFailure(frameIdx, err)
			default:
				maskGen.Generate(fgFrame.Pix, fgFrame.Width, fgFrame.Height, mask)
				refiner.Refine(fgFrame.Pix, mask, fgFrame.Width, fgFrame.Height)
				transformer.Compose(bgFrame, fgFrame, mask)
			}
		}

		if logo != nil {
			logo.Apply(bgFrame, bgFrame.PTS)
		}

		if err := writer.Write(bgFrame); err != nil {
			writer.Abort()
			return frameIdx, encodeFailure(frameIdx, err)
		}
		frameIdx++

		if frameIdx%progressInterval == 0 {
			rep.report(frameProgress(frameIdx, total), fmt.Sprintf("Compositing frame %d/%d", frameIdx, total))
		}
	}

	if err := writer.Close(); err != nil {
		return frameIdx, encodeFailure(frameIdx, err)
	}
	e.Log.Debug("Encoder accepted %d frames", writer.FramesWritten())
	if frameIdx == 0 {
		return 0, decodeFailure(0, fmt.Errorf("background %s produced no frames", opts.BackgroundPath))
	}
	return frameIdx, nil
}

// mixAudio decodes both audio tracks concurrently and builds the output
// track for the selected mode.
func (e *Engine) mixAudio(ctx context.Context, opts models.CompositeOptions, fgInfo, bgInfo *media.Info, videoDuration float64) (audio.Track, error) {
	var fgTrack, bgTrack audio.Track

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var derr error
		fgTrack, derr = media.DecodePCM(gctx, e.FFmpegPath, opts.ForegroundPath, fgInfo.HasAudio)
		return derr
	})
	g.Go(func() error {
		var derr error
		bgTrack, derr = media.DecodePCM(gctx, e.FFmpegPath, opts.BackgroundPath, bgInfo.HasAudio)
		return derr
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, cancelled()
		}
		return nil, decodeFailure(-1, err)
	}

	window := activeWindow{start: opts.StartTime, end: opts.EndTime}
	track, err := audio.Mix(fgTrack, bgTrack, audio.MixParams{
		Mode:        opts.AudioMode,
		Duration:    videoDuration,
		WindowStart: window.start,
		WindowEnd:   window.endOrZero(),
	})
	if err != nil {
		return nil, encodeFailure(-1, err)
	}
	return track, nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kartoza/kartoza-chromakey/internal/config"
	"github.com/kartoza/kartoza-chromakey/internal/deps"
	"github.com/kartoza/kartoza-chromakey/internal/engine"
	"github.com/kartoza/kartoza-chromakey/internal/logging"
	"github.com/kartoza/kartoza-chromakey/internal/models"
	"github.com/kartoza/kartoza-chromakey/internal/notify"
	"github.com/kartoza/kartoza-chromakey/internal/tui"
)

var (
	compositeJobFile string

	compositeForeground string
	compositeBackground string
	compositeOutput     string

	compositePositionX int
	compositePositionY int
	compositeScale     float64
	compositeOpacity   float64
	compositeStart     float64
	compositeEnd       float64

	compositeKeyPreset string
	compositeKeyLower  string
	compositeKeyUpper  string
	compositeBlur      int
	compositeSpill     float64

	compositeAudioMode string

	compositeLogoPath     string
	compositeLogoPosition string
	compositeLogoScale    float64
	compositeLogoOpacity  float64
	compositeLogoMargin   int

	compositeQuality bool
	compositeGPU     bool
	compositeNoTUI   bool
	compositePreview bool
)

var compositeCmd = &cobra.Command{
	Use:   "composite",
	Short: "Composite a keyed foreground video onto a background",
	Long: `Remove the colored backdrop from the foreground video and composite the
subject onto the background video.

Options can come from flags, from a YAML job file (--job), or both;
flags override job file values. A minimal invocation:

  kartoza-chromakey composite -f speaker.mp4 -b scenery.mp4 -o out.mp4`,
	RunE: runComposite,
}

func init() {
	f := compositeCmd.Flags()

	f.StringVar(&compositeJobFile, "job", "", "YAML job file with compositing options")

	f.StringVarP(&compositeForeground, "foreground", "f", "", "Foreground video (subject on colored backdrop)")
	f.StringVarP(&compositeBackground, "background", "b", "", "Background video")
	f.StringVarP(&compositeOutput, "output", "o", "", "Output video path")

	f.IntVarP(&compositePositionX, "position-x", "x", 0, "Horizontal offset from background center (pixels)")
	f.IntVarP(&compositePositionY, "position-y", "y", 0, "Vertical offset from background center (pixels)")
	f.Float64Var(&compositeScale, "scale", 1.0, "Foreground scale factor")
	f.Float64Var(&compositeOpacity, "opacity", 1.0, "Foreground opacity (0.0-1.0)")
	f.Float64Var(&compositeStart, "start", 0, "Time the composite becomes active (seconds)")
	f.Float64Var(&compositeEnd, "end", -1, "Time the composite stops, exclusive (seconds, -1 = video end)")

	f.StringVar(&compositeKeyPreset, "key", "green", "Key color preset (green, blue)")
	f.StringVar(&compositeKeyLower, "key-lower", "", "Custom lower HSV key bound as h,s,v (overrides --key)")
	f.StringVar(&compositeKeyUpper, "key-upper", "", "Custom upper HSV key bound as h,s,v")
	f.IntVar(&compositeBlur, "blur", 5, "Edge blur radius in pixels, odd or 0 to disable")
	f.Float64Var(&compositeSpill, "spill", 0, "Spill reduction strength (0.0-1.0)")

	f.StringVar(&compositeAudioMode, "audio", "synced", "Audio mode (synced, background, foreground, both, timed, none)")

	f.StringVar(&compositeLogoPath, "logo", "", "Logo image to overlay (PNG or JPEG)")
	f.StringVar(&compositeLogoPosition, "logo-position", "bottom-right", "Logo position (top-left, top-right, bottom-left, bottom-right, center)")
	f.Float64Var(&compositeLogoScale, "logo-scale", 0.15, "Logo width as a fraction of video width")
	f.Float64Var(&compositeLogoOpacity, "logo-opacity", 1.0, "Logo opacity (0.0-1.0)")
	f.IntVar(&compositeLogoMargin, "logo-margin", 20, "Logo margin from the video edge (pixels)")

	f.BoolVar(&compositeQuality, "quality", false, "Quality mode: bilinear scaling and spill reduction")
	f.BoolVar(&compositeGPU, "gpu", false, "Use hardware accelerated decode/encode if available")
	f.BoolVar(&compositeNoTUI, "no-tui", false, "Plain log output instead of the progress UI")
	f.BoolVar(&compositePreview, "preview", false, "Render the first composited frame in the terminal and exit")

	rootCmd.AddCommand(compositeCmd)
}

func runComposite(cmd *cobra.Command, args []string) error {
	log := logging.New(debugMode)

	if missing := deps.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("%s", deps.FormatMissing(missing))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warn("Could not load config, using defaults: %v", err)
		c := config.DefaultConfig()
		cfg = &c
	}

	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return err
	}

	// Without an explicit output path, number the file from the persisted
	// job counter.
	if opts.OutputPath == "" {
		n, err := config.GetNextJobNumber()
		if err != nil {
			return fmt.Errorf("allocating output name: %w", err)
		}
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		opts.OutputPath = filepath.Join(cfg.OutputDir, fmt.Sprintf("composite-%03d.mp4", n))
		log.Info("No output path given, writing to %s", opts.OutputPath)
	}

	eng := engine.New(log)
	eng.FFmpegPath = cfg.FFmpegPath
	eng.FFprobePath = cfg.FFprobePath
	eng.AudioBitrate = cfg.AudioBitrate
	if cfg.WorkDir != "" {
		eng.WorkDir = cfg.WorkDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if compositePreview {
		return runPreview(ctx, eng, opts)
	}

	var result *engine.Result
	if compositeNoTUI {
		result, err = eng.Run(ctx, opts, func(pct int, msg string) {
			log.Info("%3d%% %s", pct, msg)
		})
	} else {
		result, err = runWithTUI(ctx, eng, opts)
	}

	if err != nil {
		if cfg.Notifications {
			notify.JobFailed(err.Error())
		}
		return err
	}

	if cfg.Notifications {
		notify.JobComplete(filepath.Base(result.OutputPath))
	}
	return nil
}

// runWithTUI drives the engine under the bubbletea progress view. The
// engine runs in its own goroutine and reports through Program.Send.
func runWithTUI(ctx context.Context, eng *engine.Engine, opts models.CompositeOptions) (*engine.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(filepath.Base(opts.OutputPath), cancel)
	program := tea.NewProgram(model, tea.WithAltScreen())

	done := make(chan struct{})
	var result *engine.Result
	var runErr error

	go func() {
		defer close(done)
		result, runErr = eng.Run(ctx, opts, func(pct int, msg string) {
			program.Send(tui.ProgressMsg{Percent: pct, Message: msg})
		})
		program.Send(tui.DoneMsg{Result: result, Err: runErr})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	<-done
	return result, runErr
}

func runPreview(ctx context.Context, eng *engine.Engine, opts models.CompositeOptions) error {
	frame, err := eng.PreviewFrame(ctx, opts)
	if err != nil {
		return err
	}

	if !tui.SupportsPreview() {
		return fmt.Errorf("terminal does not support inline images (Kitty graphics protocol required)")
	}
	rendered, err := tui.RenderImage(frame.RGBA(), 80)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

// buildOptions merges defaults, job file and flags, in that order.
func buildOptions(cmd *cobra.Command, cfg *config.Config) (models.CompositeOptions, error) {
	opts := cfg.DefaultOptions

	if compositeJobFile != "" {
		jobOpts, err := config.LoadJob(compositeJobFile)
		if err != nil {
			return opts, err
		}
		opts = jobOpts
	}

	flags := cmd.Flags()
	set := func(name string) bool { return flags.Changed(name) }

	if set("foreground") {
		opts.ForegroundPath = compositeForeground
	}
	if set("background") {
		opts.BackgroundPath = compositeBackground
	}
	if set("output") {
		opts.OutputPath = compositeOutput
	}
	if set("position-x") {
		opts.PositionX = compositePositionX
	}
	if set("position-y") {
		opts.PositionY = compositePositionY
	}
	if set("scale") {
		opts.Scale = compositeScale
	}
	if set("opacity") {
		opts.Opacity = compositeOpacity
	}
	if set("start") {
		opts.StartTime = compositeStart
	}
	if set("end") {
		if compositeEnd < 0 {
			opts.EndTime = nil
		} else {
			end := compositeEnd
			opts.EndTime = &end
		}
	}
	if set("key") {
		opts.Key = models.KeyColor{Preset: compositeKeyPreset}
	}
	if set("key-lower") || set("key-upper") {
		lower, err := parseHSV(compositeKeyLower)
		if err != nil {
			return opts, fmt.Errorf("--key-lower: %w", err)
		}
		upper, err := parseHSV(compositeKeyUpper)
		if err != nil {
			return opts, fmt.Errorf("--key-upper: %w", err)
		}
		opts.Key = models.KeyColor{Lower: lower, Upper: upper}
	}
	if set("blur") {
		opts.EdgeBlurRadius = compositeBlur
	}
	if set("spill") {
		opts.SpillReduction = compositeSpill
	}
	if set("audio") {
		mode, err := models.ParseAudioMode(compositeAudioMode)
		if err != nil {
			return opts, err
		}
		opts.AudioMode = mode
	}
	if set("logo") {
		logo := models.DefaultLogoOptions(compositeLogoPath)
		if set("logo-position") {
			logo.Position = models.LogoPosition(compositeLogoPosition)
		}
		if set("logo-scale") {
			logo.Scale = compositeLogoScale
		}
		if set("logo-opacity") {
			logo.Opacity = compositeLogoOpacity
		}
		if set("logo-margin") {
			logo.Margin = compositeLogoMargin
		}
		opts.Logo = &logo
	}
	if set("quality") {
		opts.FastMode = !compositeQuality
		// Quality mode implies spill reduction unless set explicitly.
		if compositeQuality && !set("spill") && opts.SpillReduction == 0 {
			opts.SpillReduction = 0.5
		}
	}
	if set("gpu") {
		opts.GPUAccel = compositeGPU
	}

	return opts, nil
}

// parseHSV parses "h,s,v" with hue below 180 and saturation/value below 256.
func parseHSV(s string) (*models.HSV, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected h,s,v got %q", s)
	}
	var vals [3]uint8
	limits := [3]int{179, 255, 255}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("component %d of %q: %w", i+1, s, err)
		}
		if n < 0 || n > limits[i] {
			return nil, fmt.Errorf("component %d of %q out of range 0-%d", i+1, s, limits[i])
		}
		vals[i] = uint8(n)
	}
	return &models.HSV{H: vals[0], S: vals[1], V: vals[2]}, nil
}

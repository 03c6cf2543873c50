package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kartoza/kartoza-chromakey/internal/config"
	"github.com/kartoza/kartoza-chromakey/internal/hwaccel"
	"github.com/kartoza/kartoza-chromakey/internal/media"
	"github.com/kartoza/kartoza-chromakey/internal/tui"
)

var inspectPreview bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <video>...",
	Short: "Show stream information for video files",
	Long:  `Probe one or more video files and print resolution, frame rate, duration and codec information.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			c := config.DefaultConfig()
			cfg = &c
		}

		bold := lipgloss.NewStyle().Bold(true)
		gray := lipgloss.NewStyle().Foreground(lipgloss.Color("#9A9EA0"))
		green := lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
		red := lipgloss.NewStyle().Foreground(lipgloss.Color("#E95420"))

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		for _, path := range args {
			info, err := media.Probe(ctx, cfg.FFprobePath, path)
			if err != nil {
				fmt.Printf("%s %s\n  %s\n\n", red.Render("✗"), bold.Render(path), gray.Render(err.Error()))
				continue
			}

			fmt.Printf("%s %s\n", green.Render("✓"), bold.Render(path))
			if info.HasVideo {
				fmt.Printf("  %s %dx%d @ %.3g fps, %s\n", gray.Render("Video:"), info.Width, info.Height, info.FPS, info.VideoCodec)
				fmt.Printf("  %s %.2fs (~%d frames)\n", gray.Render("Duration:"), info.Duration, info.FrameCount)
			} else {
				fmt.Printf("  %s\n", gray.Render("No video stream"))
			}
			if info.HasAudio {
				fmt.Printf("  %s %s\n", gray.Render("Audio:"), info.AudioCodec)
			} else {
				fmt.Printf("  %s\n", gray.Render("No audio stream"))
			}

			if inspectPreview && info.HasVideo {
				if err := previewFirstFrame(ctx, cfg, info); err != nil {
					fmt.Printf("  %s %v\n", gray.Render("Preview unavailable:"), err)
				}
			}
			fmt.Println()
		}
		return nil
	},
}

func previewFirstFrame(ctx context.Context, cfg *config.Config, info *media.Info) error {
	if !tui.SupportsPreview() {
		return fmt.Errorf("terminal does not support inline images")
	}

	reader, err := media.NewFrameReader(ctx, cfg.FFmpegPath, info.Path, info.Width, info.Height, info.FPS, hwaccel.Software(true))
	if err != nil {
		return err
	}
	defer reader.Close()

	frame, err := reader.Next()
	if err == io.EOF {
		return fmt.Errorf("no frames")
	}
	if err != nil {
		return err
	}

	rendered, err := tui.RenderImage(frame.RGBA(), 60)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectPreview, "preview", false, "Render the first frame in the terminal")
	rootCmd.AddCommand(inspectCmd)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	debugMode bool
)

// SetVersion sets the application version (called from main)
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "kartoza-chromakey",
	Short: "Chroma-key video compositing tool",
	Long: `Kartoza Chromakey removes a uniform colored backdrop from a foreground
video and composites the subject onto a background video.

It supports:
  - Green and blue screen presets plus custom HSV key ranges
  - Edge smoothing and color spill reduction
  - Position, scale, opacity and timed display windows
  - Logo watermark overlays
  - Six audio mixing policies
  - Hardware accelerated decode/encode with automatic CPU fallback

All decoding, encoding and muxing is done through ffmpeg.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kartoza-chromakey %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Package hwaccel detects ffmpeg hardware acceleration support and maps it
// to decode/encode flag sets. Detection runs once per job; on any failure
// the caller falls back to the software path.
package hwaccel

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Accelerator identifies a hardware acceleration method.
type Accelerator string

// Supported accelerators, in selection priority order.
const (
	AccelCUDA         Accelerator = "cuda"
	AccelQSV          Accelerator = "qsv"
	AccelVideoToolbox Accelerator = "videotoolbox"
	AccelVAAPI        Accelerator = "vaapi"
	AccelNone         Accelerator = "none"
)

// Config carries the ffmpeg flags for one acceleration method.
type Config struct {
	Accelerator Accelerator
	DecodeFlags []string
	EncodeFlags []string
	// EncodeFilter uploads system-memory frames to accelerator surfaces
	// before encoding. Empty for encoders that accept raw frames directly;
	// when set it replaces the target pixel format on the encode side.
	EncodeFilter string
	Encoder      string
}

// Software returns the CPU configuration. Fast mode drops the x264 preset
// to veryfast, trading bitrate for throughput.
func Software(fast bool) *Config {
	preset := "medium"
	if fast {
		preset = "veryfast"
	}
	return &Config{
		Accelerator: AccelNone,
		DecodeFlags: []string{},
		EncodeFlags: []string{"-c:v", "libx264", "-preset", preset, "-crf", "20"},
		Encoder:     "libx264",
	}
}

// Detect probes ffmpeg for usable accelerators and returns the
// highest-priority one. When none is available it returns an error; the
// caller decides whether that is fatal (it never is for this engine).
func Detect(ctx context.Context, ffmpegPath string) (*Config, error) {
	hwaccels, err := listLines(ctx, ffmpegPath, "-hwaccels")
	if err != nil {
		return nil, fmt.Errorf("listing hwaccels: %w", err)
	}
	encoders, err := listEncoders(ctx, ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("listing encoders: %w", err)
	}

	priority := []Accelerator{AccelCUDA, AccelQSV, AccelVideoToolbox, AccelVAAPI}
	for _, accel := range priority {
		if hwaccels[string(accel)] && encoders[encoderFor(accel)] {
			return configFor(accel), nil
		}
	}
	return nil, fmt.Errorf("no usable hardware accelerator found")
}

func encoderFor(a Accelerator) string {
	if a == AccelCUDA {
		return "h264_nvenc"
	}
	return "h264_" + string(a)
}

func configFor(accel Accelerator) *Config {
	switch accel {
	case AccelCUDA:
		return &Config{
			Accelerator: AccelCUDA,
			DecodeFlags: []string{"-hwaccel", "cuda"},
			EncodeFlags: []string{"-c:v", "h264_nvenc", "-preset", "p4", "-cq", "23"},
			Encoder:     "h264_nvenc",
		}
	case AccelQSV:
		// h264_qsv only consumes QSV surfaces; raw frames have to be
		// uploaded through a filter chain.
		return &Config{
			Accelerator:  AccelQSV,
			DecodeFlags:  []string{"-hwaccel", "qsv"},
			EncodeFlags:  []string{"-init_hw_device", "qsv=hw", "-filter_hw_device", "hw", "-c:v", "h264_qsv", "-preset", "veryfast"},
			EncodeFilter: "format=nv12,hwupload=extra_hw_frames=64",
			Encoder:      "h264_qsv",
		}
	case AccelVideoToolbox:
		return &Config{
			Accelerator: AccelVideoToolbox,
			DecodeFlags: []string{"-hwaccel", "videotoolbox"},
			EncodeFlags: []string{"-c:v", "h264_videotoolbox", "-b:v", "8000k"},
			Encoder:     "h264_videotoolbox",
		}
	case AccelVAAPI:
		// h264_vaapi likewise only accepts VAAPI surfaces.
		return &Config{
			Accelerator:  AccelVAAPI,
			DecodeFlags:  []string{"-hwaccel", "vaapi", "-vaapi_device", "/dev/dri/renderD128"},
			EncodeFlags:  []string{"-vaapi_device", "/dev/dri/renderD128", "-c:v", "h264_vaapi"},
			EncodeFilter: "format=nv12,hwupload",
			Encoder:      "h264_vaapi",
		}
	default:
		return Software(false)
	}
}

func listLines(ctx context.Context, ffmpegPath, flag string) (map[string]bool, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, "-v", "quiet", flag)
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	result := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasSuffix(line, ":") {
			result[line] = true
		}
	}
	return result, nil
}

func listEncoders(ctx context.Context, ffmpegPath string) (map[string]bool, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, "-v", "quiet", "-encoders")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	known := []string{"h264_nvenc", "h264_qsv", "h264_videotoolbox", "h264_vaapi"}
	result := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := scanner.Text()
		for _, enc := range known {
			if strings.Contains(line, enc) {
				result[enc] = true
			}
		}
	}
	return result, nil
}

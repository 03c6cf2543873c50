// Package media wraps the ffmpeg and ffprobe processes behind the engine:
// stream probing, raw RGBA frame decode/encode over pipes, PCM extraction
// and final muxing. Nothing here touches pixels; that is the chroma and
// compositor packages' job.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Info describes the streams of one input file.
type Info struct {
	Path       string
	Width      int
	Height     int
	FPS        float64
	Duration   float64
	FrameCount int
	HasVideo   bool
	HasAudio   bool
	VideoCodec string
	AudioCodec string
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	NbFrames   string `json:"nb_frames"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// Probe extracts stream information via ffprobe. Unreadable or codec-less
// files surface as errors; classifying them is the caller's concern.
func Probe(ctx context.Context, ffprobePath, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("ffprobe %s: %s", path, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var ff ffprobeOutput
	if err := json.Unmarshal(output, &ff); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}

	info := &Info{Path: path}
	if dur, err := strconv.ParseFloat(ff.Format.Duration, 64); err == nil {
		info.Duration = dur
	}

	for _, s := range ff.Streams {
		switch s.CodecType {
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.VideoCodec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FPS = parseFrameRate(s.RFrameRate)
			if n, err := strconv.Atoi(s.NbFrames); err == nil {
				info.FrameCount = n
			}
		case "audio":
			if info.HasAudio {
				continue
			}
			info.HasAudio = true
			info.AudioCodec = s.CodecName
		}
	}

	if info.HasVideo && info.FrameCount == 0 && info.FPS > 0 {
		info.FrameCount = int(info.Duration * info.FPS)
	}

	return info, nil
}

// parseFrameRate converts ffprobe's "30000/1001" rational notation.
func parseFrameRate(r string) float64 {
	parts := strings.SplitN(r, "/", 2)
	if len(parts) == 2 {
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den
		}
		return 0
	}
	v, err := strconv.ParseFloat(r, 64)
	if err != nil {
		return 0
	}
	return v
}

package media

import (
	"io"
	"testing"

	"github.com/kartoza/kartoza-chromakey/internal/hwaccel"
	"github.com/kartoza/kartoza-chromakey/internal/models"
)

type discardCloser struct{ io.Writer }

func (discardCloser) Close() error { return nil }

func hasFlagPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func TestEncoderArgs_Software(t *testing.T) {
	args := encoderArgs("out.mp4", 1920, 1080, 30, hwaccel.Software(false))

	if !hasFlagPair(args, "-pix_fmt", "yuv420p") {
		t.Error("software encode should target yuv420p")
	}
	if hasFlag(args, "-vf") {
		t.Error("software encode should not carry an upload filter")
	}
	if !hasFlagPair(args, "-video_size", "1920x1080") {
		t.Errorf("missing video size, args: %v", args)
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output path must come last, got %s", args[len(args)-1])
	}
}

func TestEncoderArgs_SurfaceEncoderUsesUploadFilter(t *testing.T) {
	// Surface-only encoders cannot consume raw system-memory frames; the
	// args must carry the upload filter and no conflicting pixel format.
	for _, cfg := range []*hwaccel.Config{
		{
			Accelerator:  hwaccel.AccelVAAPI,
			EncodeFlags:  []string{"-vaapi_device", "/dev/dri/renderD128", "-c:v", "h264_vaapi"},
			EncodeFilter: "format=nv12,hwupload",
			Encoder:      "h264_vaapi",
		},
		{
			Accelerator:  hwaccel.AccelQSV,
			EncodeFlags:  []string{"-init_hw_device", "qsv=hw", "-filter_hw_device", "hw", "-c:v", "h264_qsv"},
			EncodeFilter: "format=nv12,hwupload=extra_hw_frames=64",
			Encoder:      "h264_qsv",
		},
	} {
		args := encoderArgs("out.mp4", 1280, 720, 25, cfg)

		if !hasFlagPair(args, "-vf", cfg.EncodeFilter) {
			t.Errorf("%s: missing upload filter, args: %v", cfg.Accelerator, args)
		}
		if hasFlag(args, "-pix_fmt") {
			t.Errorf("%s: -pix_fmt conflicts with surface upload, args: %v", cfg.Accelerator, args)
		}
	}
}

func TestFrameWriter_CountsFrames(t *testing.T) {
	w := &FrameWriter{stdin: discardCloser{io.Discard}}
	frame := models.NewFrame(4, 4)

	for i := 0; i < 3; i++ {
		if err := w.Write(frame); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if w.FramesWritten() != 3 {
		t.Errorf("FramesWritten() = %d, want 3", w.FramesWritten())
	}
}

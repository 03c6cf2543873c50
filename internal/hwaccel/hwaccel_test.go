package hwaccel

import (
	"strings"
	"testing"
)

func TestSoftware(t *testing.T) {
	cfg := Software(false)
	if cfg.Encoder != "libx264" {
		t.Errorf("expected libx264, got %s", cfg.Encoder)
	}
	if len(cfg.DecodeFlags) != 0 {
		t.Error("expected no decode flags on the software path")
	}

	fast := Software(true)
	found := false
	for i, f := range fast.EncodeFlags {
		if f == "-preset" && i+1 < len(fast.EncodeFlags) && fast.EncodeFlags[i+1] == "veryfast" {
			found = true
		}
	}
	if !found {
		t.Error("expected fast mode to use the veryfast preset")
	}
}

func TestEncoderFor(t *testing.T) {
	tests := []struct {
		accel   Accelerator
		encoder string
	}{
		{AccelCUDA, "h264_nvenc"},
		{AccelQSV, "h264_qsv"},
		{AccelVideoToolbox, "h264_videotoolbox"},
		{AccelVAAPI, "h264_vaapi"},
	}
	for _, tt := range tests {
		if got := encoderFor(tt.accel); got != tt.encoder {
			t.Errorf("encoderFor(%s) = %s, expected %s", tt.accel, got, tt.encoder)
		}
	}
}

func TestConfigFor_MatchesEncoder(t *testing.T) {
	for _, accel := range []Accelerator{AccelCUDA, AccelQSV, AccelVideoToolbox, AccelVAAPI} {
		cfg := configFor(accel)
		if cfg.Accelerator != accel {
			t.Errorf("configFor(%s) carries accelerator %s", accel, cfg.Accelerator)
		}
		if cfg.Encoder != encoderFor(accel) {
			t.Errorf("configFor(%s) encoder %s does not match encoderFor", accel, cfg.Encoder)
		}
	}
}

func TestConfigFor_SurfaceEncodersCarryUploadFilter(t *testing.T) {
	// vaapi and qsv encoders only accept accelerator surfaces, so their
	// configs must upload raw frames; nvenc and videotoolbox take system
	// memory directly.
	tests := []struct {
		accel      Accelerator
		wantFilter bool
	}{
		{AccelCUDA, false},
		{AccelVideoToolbox, false},
		{AccelQSV, true},
		{AccelVAAPI, true},
	}
	for _, tt := range tests {
		cfg := configFor(tt.accel)
		if tt.wantFilter && !strings.Contains(cfg.EncodeFilter, "hwupload") {
			t.Errorf("configFor(%s) needs an hwupload filter, got %q", tt.accel, cfg.EncodeFilter)
		}
		if !tt.wantFilter && cfg.EncodeFilter != "" {
			t.Errorf("configFor(%s) should not carry an upload filter, got %q", tt.accel, cfg.EncodeFilter)
		}
	}
	if Software(false).EncodeFilter != "" {
		t.Error("software path should not carry an upload filter")
	}
}

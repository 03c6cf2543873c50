package engine

import (
	"testing"

	"github.com/kartoza/kartoza-chromakey/internal/media"
)

func TestValidateStreams(t *testing.T) {
	good := func() (*media.Info, *media.Info) {
		fg := &media.Info{Path: "fg.mp4", HasVideo: true, Width: 1280, Height: 720, FPS: 30}
		bg := &media.Info{Path: "bg.mp4", HasVideo: true, Width: 1920, Height: 1080, FPS: 30}
		return fg, bg
	}

	tests := []struct {
		name    string
		mutate  func(fg, bg *media.Info)
		wantErr bool
	}{
		{"valid inputs", func(fg, bg *media.Info) {}, false},
		{"foreground without video", func(fg, bg *media.Info) { fg.HasVideo = false }, true},
		{"background without video", func(fg, bg *media.Info) { bg.HasVideo = false }, true},
		{"foreground zero width", func(fg, bg *media.Info) { fg.Width = 0 }, true},
		{"foreground zero height", func(fg, bg *media.Info) { fg.Height = 0 }, true},
		{"background zero dimensions", func(fg, bg *media.Info) { bg.Width, bg.Height = 0, 0 }, true},
		{"background zero frame rate", func(fg, bg *media.Info) { bg.FPS = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fg, bg := good()
			tt.mutate(fg, bg)
			err := validateStreams(fg, bg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if KindOf(err) != KindUnsupportedMedia {
					t.Errorf("error kind = %s, want %s", KindOf(err), KindUnsupportedMedia)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

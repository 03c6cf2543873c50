package media

import (
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kartoza/kartoza-chromakey/internal/audio"
)

// DecodePCM extracts a file's audio track as interleaved 16-bit stereo PCM
// at the mixer's fixed sample rate. A file without an audio stream decodes
// to an empty track.
func DecodePCM(ctx context.Context, ffmpegPath, path string, hasAudio bool) (audio.Track, error) {
	if !hasAudio {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-v", "error",
		"-i", path,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", fmt.Sprintf("%d", audio.Channels),
		"-ar", fmt.Sprintf("%d", audio.SampleRate),
		"pipe:1",
	)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	raw, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("decoding audio from %s: %s", path, lastLine(msg))
		}
		return nil, fmt.Errorf("decoding audio from %s: %w", path, err)
	}

	track := make(audio.Track, len(raw)/2)
	for i := range track {
		track[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return track, nil
}

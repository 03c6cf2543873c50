package media

import (
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kartoza/kartoza-chromakey/internal/audio"
)

// Mux combines the encoded video with the mixed PCM track into the final
// output file. Video is stream-copied; audio is encoded to AAC. The PCM is
// piped over stdin, so no intermediate audio file hits the disk.
func Mux(ctx context.Context, ffmpegPath, videoPath string, track audio.Track, outputPath, audioBitrate string) error {
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-v", "error",
		"-y",
		"-i", videoPath,
		"-f", "s16le",
		"-ac", fmt.Sprintf("%d", audio.Channels),
		"-ar", fmt.Sprintf("%d", audio.SampleRate),
		"-i", "-",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-shortest",
		outputPath,
	)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("mux stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting mux: %w", err)
	}

	buf := make([]byte, len(track)*2)
	for i, s := range track {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	_, writeErr := stdin.Write(buf)
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("muxing %s: %s", outputPath, lastLine(msg))
		}
		return fmt.Errorf("muxing %s: %w", outputPath, err)
	}
	if writeErr != nil {
		return fmt.Errorf("writing audio stream: %w", writeErr)
	}
	return nil
}

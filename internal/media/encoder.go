package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/kartoza/kartoza-chromakey/internal/hwaccel"
	"github.com/kartoza/kartoza-chromakey/internal/models"
)

// FrameWriter streams raw RGBA frames into an ffmpeg encode process over
// stdin, avoiding any intermediate image files on disk.
type FrameWriter struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  bytes.Buffer
	written int
}

// encoderArgs builds the ffmpeg argument list for one encode. Encoders that
// only accept accelerator surfaces get the config's upload filter in place
// of a target pixel format; software and nvenc-style encoders consume the
// raw frames directly as yuv420p.
func encoderArgs(path string, width, height int, fps float64, hw *hwaccel.Config) []string {
	args := []string{
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%g", fps),
		"-i", "-",
		"-an",
	}
	args = append(args, hw.EncodeFlags...)
	if hw.EncodeFilter != "" {
		args = append(args, "-vf", hw.EncodeFilter)
	} else {
		args = append(args, "-pix_fmt", "yuv420p")
	}
	return append(args, path)
}

// NewFrameWriter starts an ffmpeg encode writing to path. Encoder selection
// (libx264 or a hardware encoder) comes from the accelerator config.
func NewFrameWriter(ctx context.Context, ffmpegPath, path string, width, height int, fps float64, hw *hwaccel.Config) (*FrameWriter, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, encoderArgs(path, width, height, fps, hw)...)
	w := &FrameWriter{cmd: cmd}
	cmd.Stderr = &w.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("encoder stdin pipe: %w", err)
	}
	w.stdin = stdin

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting encoder for %s: %w", path, err)
	}
	return w, nil
}

// Write sends one frame to the encoder.
func (w *FrameWriter) Write(frame *models.Frame) error {
	if _, err := w.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("writing frame %d: %w", w.written, w.ffmpegError(err))
	}
	w.written++
	return nil
}

// FramesWritten returns how many frames have been encoded so far.
func (w *FrameWriter) FramesWritten() int {
	return w.written
}

// Close flushes the stream and waits for the encoder to finish.
func (w *FrameWriter) Close() error {
	w.stdin.Close()
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("encoder exit: %w", w.ffmpegError(err))
	}
	return nil
}

// Abort kills the encoder without waiting for a clean flush. Used on
// cancellation and mid-run failure.
func (w *FrameWriter) Abort() {
	w.stdin.Close()
	if w.cmd.Process != nil {
		w.cmd.Process.Kill()
	}
	w.cmd.Wait()
}

func (w *FrameWriter) ffmpegError(err error) error {
	if msg := strings.TrimSpace(w.stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", err, lastLine(msg))
	}
	return err
}

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

// FrameReader streams decoded RGBA frames from an ffmpeg process. Frames
// arrive in presentation order over a pipe; the returned frame buffer is
// reused, so it is only valid until the next Next call.
type FrameReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	frame  *models.Frame
	fps    float64
	index  int
	done   bool
}

// NewFrameReader starts an ffmpeg decode of path at the given dimensions.
// When fps differs from the file's native rate, ffmpeg conforms the stream
// so one read corresponds to exactly one output frame interval. Hardware
// decode flags come from the selected accelerator config.
func NewFrameReader(ctx context.Context, ffmpegPath, path string, width, height int, fps float64, hw *hwaccel.Config) (*FrameReader, error) {
	args := []string{"-v", "error"}
	args = append(args, hw.DecodeFlags...)
	args = append(args,
		"-i", path,
		"-vf", fmt.Sprintf("fps=%g,scale=%d:%d", fps, width, height),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	r := &FrameReader{
		cmd:   cmd,
		frame: models.NewFrame(width, height),
		fps:   fps,
	}
	cmd.Stderr = &r.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("decoder stdout pipe: %w", err)
	}
	r.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting decoder for %s: %w", path, err)
	}
	return r, nil
}

// Next returns the next frame, or io.EOF when the stream ends. The frame is
// owned by the reader and overwritten on the following call.
func (r *FrameReader) Next() (*models.Frame, error) {
	if r.done {
		return nil, io.EOF
	}

	_, err := io.ReadFull(r.stdout, r.frame.Pix)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		r.done = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading frame %d: %w", r.index, r.ffmpegError(err))
	}

	r.frame.PTS = float64(r.index) / r.fps
	r.index++
	return r.frame, nil
}

// FramesRead returns how many frames have been decoded so far.
func (r *FrameReader) FramesRead() int {
	return r.index
}

// Close tears the decoder down. Safe to call after a partial read.
func (r *FrameReader) Close() error {
	r.stdout.Close()
	if r.cmd.Process != nil {
		r.cmd.Process.Kill()
	}
	r.cmd.Wait()
	return nil
}

func (r *FrameReader) ffmpegError(err error) error {
	if msg := strings.TrimSpace(r.stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", err, lastLine(msg))
	}
	return err
}

// lastLine keeps error output readable: ffmpeg's final stderr line almost
// always carries the actual failure.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

package engine

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/kartoza/kartoza-chromakey/internal/audio"
	"github.com/kartoza/kartoza-chromakey/internal/media"
)

// estimateWorkingSet approximates the peak resident bytes of one job:
// frame and mask buffers for both streams plus the three PCM tracks held
// until muxing.
func estimateWorkingSet(fg, bg *media.Info) uint64 {
	frameBytes := func(i *media.Info) uint64 {
		return uint64(i.Width) * uint64(i.Height) * 4
	}

	// Background frame, foreground frame, scaled copy, two mask buffers.
	pixels := frameBytes(bg) + 3*frameBytes(fg)

	pcmSeconds := bg.Duration + fg.Duration
	// Decoded input tracks plus the mixed output and its byte staging.
	pcm := uint64(pcmSeconds*audio.SampleRate) * audio.Channels * 2 * 2

	return pixels + pcm
}

// checkMemory rejects jobs whose working set cannot fit in available
// memory. Probing failures skip the check rather than failing the job.
func checkMemory(fg, bg *media.Info) error {
	need := estimateWorkingSet(fg, bg)

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil
	}
	if need > vm.Available {
		return fmt.Errorf("job needs ~%d MiB but only %d MiB available",
			need/(1<<20), vm.Available/(1<<20))
	}
	return nil
}

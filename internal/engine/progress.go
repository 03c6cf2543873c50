package engine

// ProgressFunc receives job progress: a percentage from 0 to 100 and a
// short status line. Implementations must be fast; the driver calls it
// from the frame loop.
type ProgressFunc func(percent int, message string)

// progressReporter clamps and monotonizes updates so consumers always see
// a non-decreasing 0-100 sequence, and tolerates a nil callback.
type progressReporter struct {
	fn   ProgressFunc
	last int
}

// progressInterval is the frame-loop reporting cadence: at least one
// update per this many frames.
const progressInterval = 30

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn}
}

func (r *progressReporter) report(percent int, message string) {
	if percent < r.last {
		percent = r.last
	}
	if percent > 100 {
		percent = 100
	}
	r.last = percent
	if r.fn != nil {
		r.fn(percent, message)
	}
}

// Phase boundaries of the overall percentage scale. Probing takes the
// first slice, the frame loop the bulk, audio and muxing the tail.
const (
	phaseProbeDone  = 5
	phaseFramesDone = 85
	phaseAudioDone  = 95
)

// frameProgress maps a frame index onto the loop's percentage slice.
func frameProgress(frame, total int) int {
	if total <= 0 {
		return phaseProbeDone
	}
	p := phaseProbeDone + frame*(phaseFramesDone-phaseProbeDone)/total
	if p > phaseFramesDone {
		p = phaseFramesDone
	}
	return p
}

package audio

import (
	"testing"

	"github.com/kartoza/kartoza-chromakey/internal/models"
)

// constTrack returns a track of n samples all set to v.
func constTrack(n int, v int16) Track {
	t := make(Track, n)
	for i := range t {
		t[i] = v
	}
	return t
}

// Output duration must equal the requested video duration for every mode,
// whatever the input lengths.
func TestMix_DurationAlwaysMatches(t *testing.T) {
	duration := 2.0
	want := Samples(duration)

	short := constTrack(Samples(0.5), 1000)
	long := constTrack(Samples(5.0), 1000)
	var empty Track

	inputs := []struct {
		name   string
		fg, bg Track
	}{
		{"short inputs", short, short},
		{"long inputs", long, long},
		{"empty foreground", empty, long},
		{"empty background", long, empty},
		{"both empty", empty, empty},
	}

	for _, mode := range models.AudioModes {
		for _, in := range inputs {
			t.Run(string(mode)+"/"+in.name, func(t *testing.T) {
				out, err := Mix(in.fg, in.bg, MixParams{
					Mode:        mode,
					Duration:    duration,
					WindowStart: 0.5,
					WindowEnd:   1.5,
				})
				if err != nil {
					t.Fatalf("Mix: %v", err)
				}
				if len(out) != want {
					t.Errorf("expected %d samples, got %d", want, len(out))
				}
			})
		}
	}
}

func TestMix_None(t *testing.T) {
	out, err := Mix(constTrack(100, 5000), constTrack(100, 5000), MixParams{
		Mode:     models.AudioNone,
		Duration: 0.01,
	})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d: expected silence, got %d", i, s)
		}
	}
}

func TestMix_SingleTrackModes(t *testing.T) {
	fg := constTrack(Samples(1.0), 111)
	bg := constTrack(Samples(1.0), 222)

	out, err := Mix(fg, bg, MixParams{Mode: models.AudioForegroundOnly, Duration: 1.0})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if out[0] != 111 {
		t.Errorf("foreground mode: expected 111, got %d", out[0])
	}

	out, err = Mix(fg, bg, MixParams{Mode: models.AudioBackgroundOnly, Duration: 1.0})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if out[0] != 222 {
		t.Errorf("background mode: expected 222, got %d", out[0])
	}
}

func TestMix_TrimAndPad(t *testing.T) {
	// 0.5s of input against a 1s output: first half signal, second half
	// padded silence.
	fg := constTrack(Samples(0.5), 999)
	out, err := Mix(fg, nil, MixParams{Mode: models.AudioForegroundOnly, Duration: 1.0})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if out[0] != 999 {
		t.Error("expected signal at track start")
	}
	if out[len(out)-1] != 0 {
		t.Error("expected padded silence at track end")
	}

	// 2s of input against a 1s output: trimmed, no error.
	long := constTrack(Samples(2.0), 999)
	out, err = Mix(long, nil, MixParams{Mode: models.AudioForegroundOnly, Duration: 1.0})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if len(out) != Samples(1.0) {
		t.Errorf("expected trim to %d samples, got %d", Samples(1.0), len(out))
	}
}

func TestMix_BothPeakNormalizes(t *testing.T) {
	// Two near-full-scale tracks would clip when summed; the mix must be
	// scaled down instead.
	fg := constTrack(Samples(0.1), 30000)
	bg := constTrack(Samples(0.1), 30000)

	out, err := Mix(fg, bg, MixParams{Mode: models.AudioBoth, Duration: 0.1})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	for i, s := range out {
		if s > 32767 || s < -32767 {
			t.Fatalf("sample %d clipped: %d", i, s)
		}
	}
	if out[0] != 32767 {
		t.Errorf("expected peak scaled to full scale exactly, got %d", out[0])
	}
}

func TestMix_BothWithoutClippingIsPlainSum(t *testing.T) {
	fg := constTrack(Samples(0.1), 1000)
	bg := constTrack(Samples(0.1), 2000)

	out, err := Mix(fg, bg, MixParams{Mode: models.AudioBoth, Duration: 0.1})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if out[0] != 3000 {
		t.Errorf("expected plain sum 3000, got %d", out[0])
	}
}

func TestMix_SyncedAddsForegroundInWindow(t *testing.T) {
	duration := 3.0
	fg := constTrack(Samples(1.0), 1000)
	bg := constTrack(Samples(3.0), 500)

	out, err := Mix(fg, bg, MixParams{
		Mode:        models.AudioSynced,
		Duration:    duration,
		WindowStart: 1.0,
		WindowEnd:   2.0,
	})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}

	before := out[Samples(0.5)]
	inside := out[Samples(1.5)]
	after := out[Samples(2.5)]

	if before != 500 {
		t.Errorf("before window: expected background only (500), got %d", before)
	}
	if inside != 1500 {
		t.Errorf("inside window: expected background+foreground (1500), got %d", inside)
	}
	if after != 500 {
		t.Errorf("after window: expected background only (500), got %d", after)
	}
}

// Scenario: a 5-15s window on a longer timeline. Outside the window the
// track carries background (silence when the background is mute), inside
// it foreground only.
func TestMix_TimedForeground(t *testing.T) {
	duration := 20.0
	fg := constTrack(Samples(10.0), 1000)
	bg := constTrack(Samples(20.0), 500)

	out, err := Mix(fg, bg, MixParams{
		Mode:        models.AudioTimedForeground,
		Duration:    duration,
		WindowStart: 5.0,
		WindowEnd:   15.0,
	})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}

	if got := out[Samples(2.0)]; got != 500 {
		t.Errorf("before window: expected background (500), got %d", got)
	}
	if got := out[Samples(10.0)]; got != 1000 {
		t.Errorf("inside window: expected foreground only (1000), got %d", got)
	}
	if got := out[Samples(17.0)]; got != 500 {
		t.Errorf("after window: expected background (500), got %d", got)
	}
}

func TestMix_TimedForegroundSilentBackground(t *testing.T) {
	fg := constTrack(Samples(1.0), 1000)

	out, err := Mix(fg, nil, MixParams{
		Mode:        models.AudioTimedForeground,
		Duration:    3.0,
		WindowStart: 1.0,
		WindowEnd:   2.0,
	})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}

	if got := out[Samples(0.5)]; got != 0 {
		t.Errorf("before window: expected silence, got %d", got)
	}
	if got := out[Samples(1.5)]; got != 1000 {
		t.Errorf("inside window: expected foreground, got %d", got)
	}
	if got := out[Samples(2.5)]; got != 0 {
		t.Errorf("after window: expected silence, got %d", got)
	}
}

// A foreground shorter than the window leaves silence (or background) for
// the remainder of the window rather than repeating or erroring.
func TestMix_TimedForegroundShortForeground(t *testing.T) {
	fg := constTrack(Samples(0.5), 1000)
	bg := constTrack(Samples(3.0), 500)

	out, err := Mix(fg, bg, MixParams{
		Mode:        models.AudioTimedForeground,
		Duration:    3.0,
		WindowStart: 1.0,
		WindowEnd:   2.0,
	})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}

	if got := out[Samples(1.25)]; got != 1000 {
		t.Errorf("early window: expected foreground, got %d", got)
	}
	if got := out[Samples(1.75)]; got != 0 {
		t.Errorf("late window after foreground ran out: expected silence, got %d", got)
	}
}

func TestMix_UnknownMode(t *testing.T) {
	if _, err := Mix(nil, nil, MixParams{Mode: "studio", Duration: 1}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

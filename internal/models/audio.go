package models

import "fmt"

// AudioMode selects how the output audio track is built from the two inputs.
type AudioMode string

const (
	// AudioSynced keeps background audio for the full duration and mixes
	// foreground audio in during the active window.
	AudioSynced AudioMode = "synced"
	// AudioBackgroundOnly uses only the background track.
	AudioBackgroundOnly AudioMode = "background"
	// AudioForegroundOnly uses only the foreground track.
	AudioForegroundOnly AudioMode = "foreground"
	// AudioBoth sums both tracks for the full duration, peak-normalized.
	AudioBoth AudioMode = "both"
	// AudioTimedForeground plays foreground audio only inside the active
	// window and background audio (or silence) outside it.
	AudioTimedForeground AudioMode = "timed"
	// AudioNone produces a silent track.
	AudioNone AudioMode = "none"
)

// AudioModes lists every supported mode, in display order.
var AudioModes = []AudioMode{
	AudioSynced,
	AudioBackgroundOnly,
	AudioForegroundOnly,
	AudioBoth,
	AudioTimedForeground,
	AudioNone,
}

// ParseAudioMode converts a string into an AudioMode.
func ParseAudioMode(s string) (AudioMode, error) {
	for _, m := range AudioModes {
		if s == string(m) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown audio mode %q", s)
}

// Valid reports whether the mode is one of the six supported modes.
func (m AudioMode) Valid() bool {
	_, err := ParseAudioMode(string(m))
	return err == nil
}

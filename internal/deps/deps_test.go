package deps

import (
	"strings"
	"testing"
)

func TestCheck_MissingCommand(t *testing.T) {
	result := Check(Dependency{Name: "definitely-not-installed-anywhere", Required: true})

	if result.Available {
		t.Error("expected nonexistent command to be unavailable")
	}
	if result.Error == nil {
		t.Error("expected a lookup error")
	}
	if result.Path != "" {
		t.Errorf("expected empty path, got %s", result.Path)
	}
}

func TestCheck_PresentCommand(t *testing.T) {
	// sh is on PATH in any environment these tests run in
	result := Check(Dependency{Name: "sh"})

	if !result.Available {
		t.Fatalf("expected sh to be found: %v", result.Error)
	}
	if result.Path == "" {
		t.Error("expected the resolved path to be set")
	}
}

func TestCheckAll_CoversBothLists(t *testing.T) {
	required, optional := CheckAll()

	if len(required) != len(RequiredDeps) {
		t.Errorf("required results = %d, want %d", len(required), len(RequiredDeps))
	}
	if len(optional) != len(OptionalDeps) {
		t.Errorf("optional results = %d, want %d", len(optional), len(OptionalDeps))
	}
}

func TestHasAllRequired_MatchesMissingList(t *testing.T) {
	if got, want := HasAllRequired(), len(MissingRequired()) == 0; got != want {
		t.Errorf("HasAllRequired() = %v, missing list says %v", got, want)
	}
}

func TestFormatMissing(t *testing.T) {
	if out := FormatMissing(nil); out != "" {
		t.Errorf("expected empty string for no missing deps, got %q", out)
	}

	results := []CheckResult{
		{Dependency: Dependency{Name: "ffmpeg", Description: "Video decoding, encoding and muxing", Required: true}},
	}
	out := FormatMissing(results)
	if !strings.Contains(out, "ffmpeg") {
		t.Errorf("expected dependency name in output, got %q", out)
	}
	if !strings.Contains(out, "REQUIRED") {
		t.Errorf("expected REQUIRED marker in output, got %q", out)
	}
}

func TestFormatAll(t *testing.T) {
	required := []CheckResult{
		{Dependency: Dependency{Name: "ffmpeg", Description: "Video decoding", Required: true}, Available: true, Path: "/usr/bin/ffmpeg"},
		{Dependency: Dependency{Name: "ffprobe", Description: "Metadata extraction", Required: true}},
	}
	optional := []CheckResult{
		{Dependency: Dependency{Name: "notify-send", Description: "Desktop notifications"}},
	}

	out := FormatAll(required, optional)
	for _, want := range []string{"ffmpeg", "/usr/bin/ffmpeg", "ffprobe", "notify-send", "✓", "✗", "○"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

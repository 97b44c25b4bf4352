package utils

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ProbeDuration returns the decoded length of a media file in seconds using
// ffprobe. The value comes from the container's format section, not from an
// estimate.
func ProbeDuration(path string) (float64, error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var dur float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur); err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparseable duration %q", path, out)
	}
	return dur, nil
}

// NonZeroFile reports whether path exists and has a non-zero size. Zero-byte
// collaborator output counts as a failed asset even when the call itself
// returned no error.
func NonZeroFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

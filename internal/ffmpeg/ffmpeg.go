// Package ffmpeg shells out to ffmpeg for best-effort audio clipping.
package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"strconv"
)

// Available returns true if ffmpeg is on the PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Clipper extracts leading audio clips with ffmpeg. The zero value is
// usable.
type Clipper struct{}

// ExtractHead writes the first windowSec seconds of audioPath to a
// temporary mono 16 kHz WAV file and returns its path. Returns ok=false
// on any tool failure or absence; clipping is an optimization, never a
// hard requirement. The caller owns the returned file.
func (Clipper) ExtractHead(ctx context.Context, audioPath string, windowSec int) (string, bool) {
	if windowSec <= 0 || !Available() {
		return "", false
	}

	tmp, err := os.CreateTemp("", "asr_head_*.wav")
	if err != nil {
		return "", false
	}
	out := tmp.Name()
	_ = tmp.Close()

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", audioPath,
		"-t", strconv.Itoa(windowSec),
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		out,
	)
	if err := cmd.Run(); err != nil {
		_ = os.Remove(out)
		return "", false
	}
	return out, true
}

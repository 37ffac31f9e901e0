// Package stub provides a no-op transcription engine that echoes the
// audio file name. Useful for development without any ASR backend and
// for driving the pipeline from pre-named files.
package stub

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/recitevault/recitevault/internal/domain/transcript"
)

// EngineName identifies the stub engine. The scope orchestrator skips
// head-clip extraction for it, since re-transcribing a clip of a file
// name gains nothing.
const EngineName = "stub"

// Transcriber returns the file stem as the transcript.
type Transcriber struct{}

// New creates a stub engine.
func New() *Transcriber { return &Transcriber{} }

// Name implements the engine contract.
func (*Transcriber) Name() string { return EngineName }

// Transcribe returns the base file name without extension as a single
// zero-length segment.
func (*Transcriber) Transcribe(_ context.Context, audioPath string) (transcript.Result, error) {
	base := filepath.Base(audioPath)
	text := strings.TrimSuffix(base, filepath.Ext(base))
	return transcript.Result{
		Engine:      EngineName,
		Text:        text,
		Lang:        "zh",
		Segments:    []transcript.Segment{{Start: 0, End: 0, Text: text}},
		DurationSec: 0,
	}, nil
}

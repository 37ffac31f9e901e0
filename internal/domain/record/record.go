// Package record defines the append-only inbox record log entries.
package record

import (
	"time"

	"github.com/recitevault/recitevault/internal/domain/tag"
	"github.com/recitevault/recitevault/internal/domain/transcript"
)

// Debug carries the scope orchestrator diagnostics embedded in a record.
type Debug struct {
	Scope          string             `json:"scope"`
	UsedHeadClip   bool               `json:"used_head_clip"`
	FallbackToFull bool               `json:"fallback_to_full"`
	TimingMS       map[string]float64 `json:"timing_ms"`
}

// ASR embeds the transcription outcome and its diagnostics.
type ASR struct {
	Engine        string               `json:"engine"`
	Text          string               `json:"text"`
	Lang          string               `json:"lang"`
	Segments      []transcript.Segment `json:"segments"`
	TagWindowText string               `json:"tag_window_text"`
	Scope         string               `json:"scope"`
	Debug         Debug                `json:"debug"`
}

// Record is one processed audio file. Created once per processed file,
// mutated in place only by a manual relabel, never deleted by the core.
type Record struct {
	ID          string     `json:"id"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
	SrcPath     string     `json:"src_path"`
	DurationSec float64    `json:"duration_sec"`
	ASR         ASR        `json:"asr"`
	Tag         tag.Result `json:"tag"`
	LibraryPath string     `json:"library_path"`
	NeedsReview bool       `json:"needs_review"`
}

// NowISO formats a timestamp the way records store created_at/updated_at.
func NowISO(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

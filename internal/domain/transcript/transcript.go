// Package transcript holds transcription results and the head-window
// text selection used to derive classification input.
package transcript

import "strings"

// Segment is one time-stamped span of transcribed speech.
type Segment struct {
	Start float64 `json:"t0"`
	End   float64 `json:"t1"`
	Text  string  `json:"text"`
}

// Result is the output of one transcription engine call.
type Result struct {
	Engine      string    `json:"engine"`
	Text        string    `json:"text"`
	Lang        string    `json:"lang"`
	Segments    []Segment `json:"segments"`
	DurationSec float64   `json:"duration_sec"`
}

// DurationFromSegments derives a duration when the engine does not report
// one: the maximum segment end time.
func DurationFromSegments(segments []Segment) float64 {
	var max float64
	for _, s := range segments {
		if s.End > max {
			max = s.End
		}
	}
	return max
}

// HeadWindowText concatenates the text of segments starting within the
// first windowSec seconds, space-joined, stopping after the first segment
// that crosses the window boundary. Falls back to the full transcript
// text when the window is non-positive, there are no segments, or no
// segment text was collected. Pure: same input, same output.
func HeadWindowText(r Result, windowSec int) string {
	full := strings.TrimSpace(r.Text)
	if windowSec <= 0 || len(r.Segments) == 0 {
		return full
	}

	var snippets []string
	for _, seg := range r.Segments {
		if seg.Start <= float64(windowSec) {
			if text := strings.TrimSpace(seg.Text); text != "" {
				snippets = append(snippets, text)
			}
		}
		if seg.End >= float64(windowSec) {
			break
		}
	}

	head := strings.TrimSpace(strings.Join(snippets, " "))
	if head == "" {
		return full
	}
	return head
}

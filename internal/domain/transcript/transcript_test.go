package transcript

import "testing"

func TestDurationFromSegments(t *testing.T) {
	segs := []Segment{
		{Start: 0, End: 4.5, Text: "a"},
		{Start: 4.5, End: 12.25, Text: "b"},
		{Start: 12.25, End: 9, Text: "c"},
	}
	if got := DurationFromSegments(segs); got != 12.25 {
		t.Errorf("DurationFromSegments = %v, want 12.25", got)
	}
	if got := DurationFromSegments(nil); got != 0 {
		t.Errorf("DurationFromSegments(nil) = %v, want 0", got)
	}
}

func TestHeadWindowText(t *testing.T) {
	r := Result{
		Text: "full text",
		Segments: []Segment{
			{Start: 0, End: 8, Text: "第一段"},
			{Start: 8, End: 22, Text: "第二段"},
			{Start: 22, End: 30, Text: "第三段"},
		},
	}

	tests := []struct {
		name      string
		result    Result
		windowSec int
		want      string
	}{
		{"window covers two segments", r, 20, "第一段 第二段"},
		{"boundary segment included then stop", r, 10, "第一段 第二段"},
		{"zero window falls back to full", r, 0, "full text"},
		{"no segments falls back to full", Result{Text: "only"}, 20, "only"},
		{
			"empty snippets fall back to full",
			Result{Text: "fallback", Segments: []Segment{{Start: 0, End: 5, Text: "   "}}},
			20,
			"fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeadWindowText(tt.result, tt.windowSec); got != tt.want {
				t.Errorf("HeadWindowText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeadWindowText_Idempotent(t *testing.T) {
	r := Result{
		Text: "whole",
		Segments: []Segment{
			{Start: 0, End: 5, Text: "头"},
			{Start: 5, End: 40, Text: "尾"},
		},
	}
	first := HeadWindowText(r, 20)
	second := HeadWindowText(r, 20)
	if first != second {
		t.Errorf("HeadWindowText not stable: %q vs %q", first, second)
	}
}

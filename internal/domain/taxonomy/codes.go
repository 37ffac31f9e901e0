package taxonomy

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

// CodeRef is a compact "C07"-style reference found in text: a category
// code letter followed by a one- or two-digit index, tolerant of a
// leading zero.
type CodeRef struct {
	Category Category
	Index    int
}

var codeRefPattern = regexp.MustCompile(`(?i)([CSP])\s*0?([0-9]{1,2})`)

// FindCodeRefs returns code references whose letter is not glued to other
// alphanumerics on either side, in order of appearance.
func FindCodeRefs(text string) []CodeRef {
	var refs []CodeRef
	for _, m := range codeRefPattern.FindAllStringSubmatchIndex(text, -1) {
		if !asciiBoundary(text, m[0], m[1]) {
			continue
		}
		refs = append(refs, refAt(text, m))
	}
	return refs
}

// FindLooseCodeRefs returns all code references regardless of surrounding
// characters. Used by the permissive command-parsing pass.
func FindLooseCodeRefs(text string) []CodeRef {
	var refs []CodeRef
	for _, m := range codeRefPattern.FindAllStringSubmatchIndex(text, -1) {
		refs = append(refs, refAt(text, m))
	}
	return refs
}

func refAt(text string, m []int) CodeRef {
	cat, _ := ForCode(text[m[2]:m[3]])
	idx, _ := strconv.Atoi(text[m[4]:m[5]])
	return CodeRef{Category: cat, Index: idx}
}

// asciiBoundary reports whether the [start,end) span is delimited by
// non-alphanumeric runes (or text edges) on both sides.
func asciiBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isASCIIAlnum(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isASCIIAlnum(r) {
			return false
		}
	}
	return true
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

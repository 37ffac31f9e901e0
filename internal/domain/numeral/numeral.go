// Package numeral converts spoken Chinese or Arabic numeral tokens into
// integers.
package numeral

import (
	"strconv"
	"strings"
)

// TokenClass is the regexp character-class for a numeral token, shared
// by the classifier and command-parser patterns.
const TokenClass = `[一二三四五六七八九十两0-9]{1,3}`

var digits = map[string]int{
	"零": 0,
	"〇": 0,
	"一": 1,
	"二": 2,
	"两": 2,
	"三": 3,
	"四": 4,
	"五": 5,
	"六": 6,
	"七": 7,
	"八": 8,
	"九": 9,
}

// ToInt parses a numeral token. Arabic digits parse as a decimal literal.
// "十" composes tens ("十二"=12, "二十"=20, bare "十"=10). Any other token
// is read as a concatenation of single digits, not a place-valued number,
// so "一二三" is 123. Returns false for an empty token or any character
// outside the digit table.
func ToInt(token string) (int, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}
	if asciiDigits(token) {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	if strings.ContainsRune(token, '十') {
		left, right, _ := strings.Cut(token, "十")
		l := 1
		if left != "" {
			if v, ok := digits[left]; ok {
				l = v
			}
		}
		r := 0
		if right != "" {
			if v, ok := digits[right]; ok {
				r = v
			}
		}
		return l*10 + r, true
	}

	total := 0
	for _, ch := range token {
		d, ok := digits[string(ch)]
		if !ok {
			return 0, false
		}
		total = total*10 + d
	}
	return total, true
}

// asciiDigits reports whether the token is an unsigned ASCII digit run.
func asciiDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

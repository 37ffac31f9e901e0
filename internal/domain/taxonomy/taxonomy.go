// Package taxonomy describes the fixed homework categories and their
// numbered items. A Store is loaded fresh from durable storage for every
// operation and replaced only as a whole document.
package taxonomy

import (
	"fmt"
	"strings"

	"github.com/recitevault/recitevault/internal/domain"
)

// Category is one of the three fixed homework types.
type Category string

const (
	// Vocab groups word-list recordings.
	Vocab Category = "VOCAB"
	// Sentence groups sentence-pattern recordings.
	Sentence Category = "SENTENCE"
	// FastStory groups short-story recordings.
	FastStory Category = "FASTSTORY"
)

// Categories returns all categories in the fixed scan order used by the
// classifier and the command parser.
func Categories() []Category {
	return []Category{Vocab, Sentence, FastStory}
}

// Parse normalizes a raw category string. Unknown values are rejected.
func Parse(raw string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	switch c {
	case Vocab, Sentence, FastStory:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidCategory, raw)
}

// Code returns the single-letter category code used in item folder
// prefixes and compact spoken references ("C07").
func (c Category) Code() string {
	switch c {
	case Vocab:
		return "C"
	case Sentence:
		return "S"
	case FastStory:
		return "P"
	}
	return "?"
}

// Label returns the native-language category label used in reports and
// day-package folder names.
func (c Category) Label() string {
	switch c {
	case Vocab:
		return "词汇"
	case Sentence:
		return "句子"
	case FastStory:
		return "快嘴"
	}
	return string(c)
}

// LibraryDir returns the library subdirectory name for the category.
func (c Category) LibraryDir() string {
	switch c {
	case Vocab:
		return "Vocab"
	case Sentence:
		return "Sentences"
	case FastStory:
		return "FastStory"
	}
	return string(c)
}

// ForCode maps a single-letter code back to its category.
func ForCode(code string) (Category, bool) {
	switch strings.ToUpper(code) {
	case "C":
		return Vocab, true
	case "S":
		return Sentence, true
	case "P":
		return FastStory, true
	}
	return "", false
}

// ItemMeta holds the canonical titles and matching synonyms of one item.
type ItemMeta struct {
	TitleZH  string
	TitleEN  string
	Synonyms []string
}

// Entry holds one category's items and the valid index range.
type Entry struct {
	MaxIndex int
	Items    map[int]ItemMeta
}

// Store is the in-memory taxonomy snapshot.
type Store struct {
	entries        map[Category]Entry
	globalSynonyms map[Category][]string
}

// englishFallbacks are appended to every keyword list regardless of the
// configured global synonyms.
var englishFallbacks = map[Category][]string{
	Vocab:     {"vocab"},
	Sentence:  {"sentence"},
	FastStory: {"faststory", "story"},
}

// New builds a Store. Every fixed category must be present.
func New(entries map[Category]Entry, globalSynonyms map[Category][]string) (*Store, error) {
	for _, c := range Categories() {
		e, ok := entries[c]
		if !ok {
			return nil, fmt.Errorf("%w: missing category %s", domain.ErrInvalidDocument, c)
		}
		if e.MaxIndex < 1 {
			return nil, fmt.Errorf("%w: category %s max_index %d", domain.ErrInvalidDocument, c, e.MaxIndex)
		}
	}
	return &Store{entries: entries, globalSynonyms: globalSynonyms}, nil
}

// MaxIndex returns the highest valid item index for the category.
func (s *Store) MaxIndex(c Category) int {
	return s.entries[c].MaxIndex
}

// ValidIndex reports whether idx lies in [1, MaxIndex] for the category.
func (s *Store) ValidIndex(c Category, idx int) bool {
	return idx >= 1 && idx <= s.entries[c].MaxIndex
}

// Item returns the metadata for an item, or the zero value when the
// taxonomy has no entry for that index.
func (s *Store) Item(c Category, idx int) ItemMeta {
	return s.entries[c].Items[idx]
}

// Items returns the item map of a category. Callers must not mutate it.
func (s *Store) Items(c Category) map[int]ItemMeta {
	return s.entries[c].Items
}

// Keywords returns the lowercase trigger words for a category: the
// configured global synonyms plus the fixed English fallbacks.
func (s *Store) Keywords(c Category) []string {
	syns := s.globalSynonyms[c]
	out := make([]string, 0, len(syns)+2)
	for _, k := range syns {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return append(out, englishFallbacks[c]...)
}

// GlobalSynonyms returns the raw configured trigger words per category.
func (s *Store) GlobalSynonyms() map[Category][]string {
	return s.globalSynonyms
}

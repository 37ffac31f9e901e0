// Package command extracts a structured requirement set from free-form
// teacher instructions. Several overlapping passes are unioned per
// category; the output is deliberately permissive (high recall) because
// a human reviews it before package assembly.
package command

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/recitevault/recitevault/internal/domain/needs"
	"github.com/recitevault/recitevault/internal/domain/numeral"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

// InstructionLog persists the raw teacher text for audit.
type InstructionLog interface {
	SaveInstruction(ctx context.Context, text string) error
}

// TaxonomyLoader supplies the current classification taxonomy.
type TaxonomyLoader interface {
	Load(ctx context.Context) (*taxonomy.Store, error)
}

// Service parses teacher instructions.
type Service struct {
	taxonomies TaxonomyLoader
	log        InstructionLog
}

// New creates a command parser. log may be nil to skip audit persistence.
func New(taxonomies TaxonomyLoader, log InstructionLog) *Service {
	return &Service{taxonomies: taxonomies, log: log}
}

var (
	whitespace     = regexp.MustCompile(`\s+`)
	chunkDelims    = regexp.MustCompile(`[，,。；;、\n]`)
	chunkNumeral   = regexp.MustCompile(`(?:第)?(` + numeral.TokenClass + `)(?:类|篇)?`)
	sentenceNum    = regexp.MustCompile(`(?:句子|句型)(` + numeral.TokenClass + `)`)
	vocabNum       = regexp.MustCompile(`(?:词汇|单词|词组)(` + numeral.TokenClass + `)`)
	storyNum       = regexp.MustCompile(`(?:快嘴|阅读|短文)(?:第)?(` + numeral.TokenClass + `)(?:篇)?`)
	storyOrdinal   = regexp.MustCompile(`第(` + numeral.TokenClass + `)篇`)
	chunkKeysOrder = []struct {
		cat  taxonomy.Category
		keys []string
	}{
		{taxonomy.Sentence, []string{"句子", "句型"}},
		{taxonomy.Vocab, []string{"词汇", "单词", "词组"}},
		{taxonomy.FastStory, []string{"快嘴", "阅读", "短文"}},
	}
)

// Parse unions every extraction pass, then clamps to the taxonomy's
// valid index ranges and sorts. The raw text is persisted as a side
// effect when an instruction log is configured.
func (s *Service) Parse(ctx context.Context, text string) (needs.Set, error) {
	store, err := s.taxonomies.Load(ctx)
	if err != nil {
		return nil, err
	}
	normalized := whitespace.ReplaceAllString(text, "")
	found := needs.Set{}

	collect(found, taxonomy.Sentence, sentenceNum, normalized)
	collect(found, taxonomy.Vocab, vocabNum, normalized)
	collect(found, taxonomy.FastStory, storyNum, normalized)

	// Chunk pass catches phrases like "词汇七和11" where numerals are not
	// adjacent to the keyword.
	for _, chunk := range chunkDelims.Split(normalized, -1) {
		if chunk == "" {
			continue
		}
		cat, ok := chunkCategory(chunk)
		if !ok {
			continue
		}
		collect(found, cat, chunkNumeral, chunk)
	}

	// Compact code references, permissive: any C/S/P + index pair counts.
	for _, ref := range taxonomy.FindLooseCodeRefs(normalized) {
		found.Add(ref.Category, ref.Index)
	}

	collect(found, taxonomy.FastStory, storyOrdinal, normalized)

	// Item synonym containment across the whole text.
	lower := strings.ToLower(normalized)
	for _, c := range taxonomy.Categories() {
		for idx := 1; idx <= store.MaxIndex(c); idx++ {
			for _, syn := range store.Item(c, idx).Synonyms {
				syn = strings.TrimSpace(syn)
				if syn == "" || allDigits(syn) {
					continue
				}
				if strings.Contains(lower, strings.ToLower(syn)) {
					found.Add(c, idx)
					break
				}
			}
		}
	}

	if s.log != nil {
		if err := s.log.SaveInstruction(ctx, text); err != nil {
			return nil, fmt.Errorf("save instruction: %w", err)
		}
	}

	return found.Normalized(store), nil
}

// collect adds every numeral captured by re in text to the category.
func collect(dst needs.Set, c taxonomy.Category, re *regexp.Regexp, text string) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v, ok := numeral.ToInt(m[1]); ok && v > 0 {
			dst.Add(c, v)
		}
	}
}

func chunkCategory(chunk string) (taxonomy.Category, bool) {
	for _, entry := range chunkKeysOrder {
		for _, k := range entry.keys {
			if strings.Contains(chunk, k) {
				return entry.cat, true
			}
		}
	}
	return "", false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

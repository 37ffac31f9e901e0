// Package classify maps tag text onto a taxonomy entry through a fixed,
// ordered rule cascade. The first rule producing a validated hit wins at
// its confidence tier; the final fallback always matches.
package classify

import (
	"regexp"
	"strings"

	"github.com/recitevault/recitevault/internal/domain/numeral"
	"github.com/recitevault/recitevault/internal/domain/tag"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

// Tiers holds the rule-assigned confidence values. They are compatibility
// constants carried from the reference deployment, exposed as
// configuration rather than hard law.
type Tiers struct {
	ExplicitCode     float64
	KeywordNumeral   float64
	TitleWithKeyword float64
	TitleOnly        float64
	KeywordFallback  float64
	BareFallback     float64
}

// DefaultTiers returns the stock confidence values.
func DefaultTiers() Tiers {
	return Tiers{
		ExplicitCode:     0.95,
		KeywordNumeral:   0.85,
		TitleWithKeyword: 0.8,
		TitleOnly:        0.75,
		KeywordFallback:  0.3,
		BareFallback:     0.2,
	}
}

// rule inspects the scan state and either claims the classification or
// passes to the next rule.
type rule func(*scan) (tag.Result, bool)

// Service classifies free text against a taxonomy snapshot.
type Service struct {
	tiers Tiers
	rules []rule
}

// New creates a classifier with default confidence tiers.
func New() *Service {
	s := &Service{tiers: DefaultTiers()}
	s.rules = []rule{s.matchExplicitCode, s.matchTitleSynonym, s.matchKeywordNumeral, s.fallback}
	return s
}

// WithTiers overrides the confidence tiers.
func (s *Service) WithTiers(t Tiers) *Service {
	s.tiers = t
	return s
}

// Classify runs the cascade. It always produces a result; low-confidence
// outcomes are flagged by the caller against its own review threshold,
// not here.
func (s *Service) Classify(text string, store *taxonomy.Store) tag.Result {
	sc := newScan(text, store)
	for _, r := range s.rules {
		if res, ok := r(sc); ok {
			return res
		}
	}
	// The fallback rule always claims the scan.
	panic("classify: cascade exhausted")
}

var numeralPattern = regexp.MustCompile(`(?:第)?(` + numeral.TokenClass + `)(?:类|篇)?`)

// scan carries the text under classification and the signals collected
// by the keyword/title/numeral passes.
type scan struct {
	text  string
	lower string
	store *taxonomy.Store

	signals tag.Signals

	collected bool
	detected  taxonomy.Category
	hasTitle  bool
	titleCat  taxonomy.Category
	titleIdx  int
	index     int
}

func newScan(text string, store *taxonomy.Store) *scan {
	t := strings.TrimSpace(text)
	return &scan{
		text:  t,
		lower: strings.ToLower(t),
		store: store,
		signals: tag.Signals{
			HitKeywords:    []string{},
			RawNumberForms: []string{},
			RawTitleForms:  []string{},
		},
	}
}

// collect runs the keyword, title-synonym and numeral passes once.
func (sc *scan) collect() {
	if sc.collected {
		return
	}
	sc.collected = true

	// Category keyword containment, first hit in fixed category order.
scanKeywords:
	for _, c := range taxonomy.Categories() {
		for _, kw := range sc.store.Keywords(c) {
			if kw != "" && strings.Contains(sc.lower, kw) {
				sc.signals.HitKeywords = append(sc.signals.HitKeywords, kw)
				sc.detected = c
				break scanKeywords
			}
		}
	}

	// Item title/synonym containment, first hit wins. Purely numeric
	// synonyms are the numeral pass's job, not literal matching.
scanTitles:
	for _, c := range taxonomy.Categories() {
		for idx := 1; idx <= sc.store.MaxIndex(c); idx++ {
			for _, syn := range sc.store.Item(c, idx).Synonyms {
				syn = strings.TrimSpace(syn)
				if syn == "" || isAllDigits(syn) {
					continue
				}
				if strings.Contains(sc.lower, strings.ToLower(syn)) {
					sc.signals.RawTitleForms = append(sc.signals.RawTitleForms, syn)
					sc.hasTitle = true
					sc.titleCat = c
					sc.titleIdx = idx
					break scanTitles
				}
			}
		}
	}

	// Nearby numeral, optionally affixed with 第/类/篇.
	if m := numeralPattern.FindStringSubmatch(sc.text); m != nil {
		sc.signals.RawNumberForms = append(sc.signals.RawNumberForms, m[1])
		if v, ok := numeral.ToInt(m[1]); ok {
			sc.index = v
		}
	}
}

func (sc *scan) result(c taxonomy.Category, idx int, confidence float64) tag.Result {
	item := sc.store.Item(c, idx)
	return tag.Result{
		Category:   c,
		Index:      idx,
		TitleZH:    item.TitleZH,
		TitleEN:    item.TitleEN,
		Confidence: confidence,
		Signals:    sc.signals,
	}
}

// matchExplicitCode claims a lone "C07"-shaped token with a valid index.
func (s *Service) matchExplicitCode(sc *scan) (tag.Result, bool) {
	for _, ref := range taxonomy.FindCodeRefs(sc.text) {
		if sc.store.ValidIndex(ref.Category, ref.Index) {
			return sc.result(ref.Category, ref.Index, s.tiers.ExplicitCode), true
		}
		break
	}
	return tag.Result{}, false
}

// matchTitleSynonym claims a title hit, provided any keyword-detected
// category does not contradict it.
func (s *Service) matchTitleSynonym(sc *scan) (tag.Result, bool) {
	sc.collect()
	if !sc.hasTitle {
		return tag.Result{}, false
	}
	if sc.detected != "" && sc.detected != sc.titleCat {
		return tag.Result{}, false
	}
	confidence := s.tiers.TitleOnly
	if sc.detected != "" {
		confidence = s.tiers.TitleWithKeyword
	}
	return sc.result(sc.titleCat, sc.titleIdx, confidence), true
}

// matchKeywordNumeral claims a keyword-detected category paired with a
// numeral valid for it.
func (s *Service) matchKeywordNumeral(sc *scan) (tag.Result, bool) {
	sc.collect()
	if sc.detected == "" || sc.index <= 0 || !sc.store.ValidIndex(sc.detected, sc.index) {
		return tag.Result{}, false
	}
	return sc.result(sc.detected, sc.index, s.tiers.KeywordNumeral), true
}

// fallback always claims: keyword category or the default, numeral index
// or the category's first item, low confidence.
func (s *Service) fallback(sc *scan) (tag.Result, bool) {
	sc.collect()
	c := sc.detected
	confidence := s.tiers.KeywordFallback
	if c == "" {
		c = taxonomy.Vocab
		confidence = s.tiers.BareFallback
	}
	idx := 1
	if sc.index > 0 && sc.store.ValidIndex(c, sc.index) {
		idx = sc.index
	}
	return sc.result(c, idx, confidence), true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

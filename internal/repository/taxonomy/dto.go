package taxonomy

import domtax "github.com/recitevault/recitevault/internal/domain/taxonomy"

// ItemDoc is the JSON-serializable form of one taxonomy item.
type ItemDoc struct {
	TitleZH  string   `json:"title_zh"`
	TitleEN  string   `json:"title_en"`
	Synonyms []string `json:"synonyms"`
}

// CategoryDoc is the JSON-serializable form of one category entry.
type CategoryDoc struct {
	MaxIndex int                `json:"max_index"`
	Items    map[string]ItemDoc `json:"items"`
}

// Document is the whole taxonomy document as stored on disk. The fixed
// top-level keys double as the versioned deserialization boundary: an
// unknown category key rejects the document.
type Document struct {
	Vocab          CategoryDoc         `json:"VOCAB"`
	Sentence       CategoryDoc         `json:"SENTENCE"`
	FastStory      CategoryDoc         `json:"FASTSTORY"`
	GlobalSynonyms map[string][]string `json:"GLOBAL_SYNONYMS"`
}

func (d Document) categories() map[domtax.Category]CategoryDoc {
	return map[domtax.Category]CategoryDoc{
		domtax.Vocab:     d.Vocab,
		domtax.Sentence:  d.Sentence,
		domtax.FastStory: d.FastStory,
	}
}

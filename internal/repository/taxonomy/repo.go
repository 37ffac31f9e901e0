// Package taxonomy persists the taxonomy document as a single JSON file
// that is always read and replaced whole.
package taxonomy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	domtax "github.com/recitevault/recitevault/internal/domain/taxonomy"

	"github.com/recitevault/recitevault/internal/domain"
	"github.com/recitevault/recitevault/internal/repository/vault"
)

// Repo loads and saves the taxonomy document. Nothing is cached: every
// Load reflects the latest persisted version.
type Repo struct {
	layout vault.Layout
}

// New creates a taxonomy repository.
func New(layout vault.Layout) *Repo {
	return &Repo{layout: layout}
}

// Load reads the document and hydrates a Store, seeding the default
// document when none exists yet.
func (r *Repo) Load(ctx context.Context) (*domtax.Store, error) {
	doc, err := r.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return storeFromDocument(doc)
}

// Raw reads the document without interpretation, for the config API.
func (r *Repo) Raw(_ context.Context) (Document, error) {
	data, err := os.ReadFile(r.layout.MappingsPath())
	if os.IsNotExist(err) {
		doc := DefaultDocument()
		if err := r.write(doc); err != nil {
			return Document{}, err
		}
		return doc, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("read taxonomy document: %w", err)
	}
	return DecodeDocument(data)
}

// Replace overwrites the whole document. There are no partial updates.
func (r *Repo) Replace(_ context.Context, doc Document) error {
	if _, err := storeFromDocument(doc); err != nil {
		return err
	}
	return r.write(doc)
}

// RawDocument returns the persisted document bytes for the config API.
func (r *Repo) RawDocument(ctx context.Context) ([]byte, error) {
	doc, err := r.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ReplaceDocument validates and stores client-supplied document bytes.
func (r *Repo) ReplaceDocument(ctx context.Context, data []byte) error {
	doc, err := DecodeDocument(data)
	if err != nil {
		return err
	}
	return r.Replace(ctx, doc)
}

func (r *Repo) write(doc Document) error {
	if err := os.MkdirAll(r.layout.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal taxonomy document: %w", err)
	}
	if err := os.WriteFile(r.layout.MappingsPath(), data, 0o644); err != nil {
		return fmt.Errorf("write taxonomy document: %w", err)
	}
	return nil
}

// DecodeDocument parses document bytes, rejecting unknown top-level
// categories.
func DecodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
	}
	return doc, nil
}

// storeFromDocument validates the document and builds the domain store.
// Missing item fields default; a broken index key or max_index rejects
// the whole document.
func storeFromDocument(doc Document) (*domtax.Store, error) {
	entries := make(map[domtax.Category]domtax.Entry, 3)
	for c, cd := range doc.categories() {
		items := make(map[int]domtax.ItemMeta, len(cd.Items))
		for key, item := range cd.Items {
			idx, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("%w: category %s item key %q", domain.ErrInvalidDocument, c, key)
			}
			items[idx] = domtax.ItemMeta{
				TitleZH:  item.TitleZH,
				TitleEN:  item.TitleEN,
				Synonyms: item.Synonyms,
			}
		}
		entries[c] = domtax.Entry{MaxIndex: cd.MaxIndex, Items: items}
	}

	globals := make(map[domtax.Category][]string, len(doc.GlobalSynonyms))
	for raw, syns := range doc.GlobalSynonyms {
		c, err := domtax.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: global synonyms for %q", domain.ErrInvalidDocument, raw)
		}
		globals[c] = syns
	}

	return domtax.New(entries, globals)
}

// DefaultDocument seeds the stock taxonomy: generic numbered items per
// category plus the exemplar titled items.
func DefaultDocument() Document {
	doc := Document{
		Vocab:     defaultCategory(17, "词汇", "Vocab"),
		Sentence:  defaultCategory(15, "句子", "Sentence"),
		FastStory: defaultCategory(6, "快嘴", "FastStory"),
		GlobalSynonyms: map[string][]string{
			string(domtax.Vocab):     {"词汇", "单词", "词组", "vocab"},
			string(domtax.Sentence):  {"句子", "句型", "sentence"},
			string(domtax.FastStory): {"快嘴", "阅读", "小短文", "story"},
		},
	}

	doc.Vocab.Items["7"] = ItemDoc{
		TitleZH:  "颜色",
		TitleEN:  "Color",
		Synonyms: []string{"颜色", "color", "第七类", "7类", "七类"},
	}
	doc.Sentence.Items["5"] = ItemDoc{
		TitleZH:  "数量相关",
		TitleEN:  "Quantity",
		Synonyms: []string{"数量", "数量相关", "第5类", "五类", "句子五"},
	}
	doc.FastStory.Items["3"] = ItemDoc{
		TitleZH:  "A super player",
		TitleEN:  "A super player",
		Synonyms: []string{"第三篇", "第3篇", "3篇", "A super player", "super player"},
	}

	return doc
}

func defaultCategory(maxIndex int, zhPrefix, enPrefix string) CategoryDoc {
	items := make(map[string]ItemDoc, maxIndex)
	for idx := 1; idx <= maxIndex; idx++ {
		zh := fmt.Sprintf("%s%02d", zhPrefix, idx)
		en := fmt.Sprintf("%s%02d", enPrefix, idx)
		items[strconv.Itoa(idx)] = ItemDoc{
			TitleZH: zh,
			TitleEN: en,
			Synonyms: []string{
				zh,
				en,
				fmt.Sprintf("第%d类", idx),
				fmt.Sprintf("%d类", idx),
			},
		}
	}
	return CategoryDoc{MaxIndex: maxIndex, Items: items}
}

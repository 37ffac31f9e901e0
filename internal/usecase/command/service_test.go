package command

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/recitevault/recitevault/internal/domain/needs"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

type stubTaxonomies struct {
	store *taxonomy.Store
	err   error
}

func (s *stubTaxonomies) Load(context.Context) (*taxonomy.Store, error) {
	return s.store, s.err
}

type captureLog struct {
	saved []string
	err   error
}

func (c *captureLog) SaveInstruction(_ context.Context, text string) error {
	c.saved = append(c.saved, text)
	return c.err
}

func testStore(t *testing.T) *taxonomy.Store {
	t.Helper()
	store, err := taxonomy.New(map[taxonomy.Category]taxonomy.Entry{
		taxonomy.Vocab: {MaxIndex: 17, Items: map[int]taxonomy.ItemMeta{
			7: {TitleZH: "颜色", Synonyms: []string{"颜色"}},
		}},
		taxonomy.Sentence:  {MaxIndex: 15, Items: map[int]taxonomy.ItemMeta{}},
		taxonomy.FastStory: {MaxIndex: 6, Items: map[int]taxonomy.ItemMeta{}},
	}, nil)
	if err != nil {
		t.Fatalf("taxonomy.New: %v", err)
	}
	return store
}

func TestParse(t *testing.T) {
	store := testStore(t)

	tests := []struct {
		name string
		text string
		want needs.Set
	}{
		{
			"keyword adjacent numerals",
			"今天作业：句子五，词汇十二",
			needs.Set{
				taxonomy.Vocab:     {12},
				taxonomy.Sentence:  {5},
				taxonomy.FastStory: {},
			},
		},
		{
			"chunk pass catches separated numerals",
			"词汇七和11，快嘴第三篇",
			needs.Set{
				taxonomy.Vocab:     {7, 11},
				taxonomy.Sentence:  {},
				taxonomy.FastStory: {3},
			},
		},
		{
			"compact codes",
			"补交S05和C3",
			needs.Set{
				taxonomy.Vocab:     {3},
				taxonomy.Sentence:  {5},
				taxonomy.FastStory: {},
			},
		},
		{
			"ordinal story reference",
			"读第二篇",
			needs.Set{
				taxonomy.Vocab:     {},
				taxonomy.Sentence:  {},
				taxonomy.FastStory: {2},
			},
		},
		{
			"item synonym containment",
			"复习一下颜色",
			needs.Set{
				taxonomy.Vocab:     {7},
				taxonomy.Sentence:  {},
				taxonomy.FastStory: {},
			},
		},
		{
			"out of range indices dropped",
			"句子99，词汇18",
			needs.Set{
				taxonomy.Vocab:     {},
				taxonomy.Sentence:  {},
				taxonomy.FastStory: {},
			},
		},
		{
			"two categories two numerals each",
			"句子五、句子7；词汇一、词汇2",
			needs.Set{
				taxonomy.Vocab:     {1, 2},
				taxonomy.Sentence:  {5, 7},
				taxonomy.FastStory: {},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&stubTaxonomies{store: store}, nil)
			got, err := svc.Parse(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParse_SavesInstruction(t *testing.T) {
	log := &captureLog{}
	svc := New(&stubTaxonomies{store: testStore(t)}, log)

	if _, err := svc.Parse(context.Background(), "句子五"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(log.saved) != 1 || log.saved[0] != "句子五" {
		t.Errorf("saved instructions = %v, want the raw text", log.saved)
	}
}

func TestParse_LogFailure(t *testing.T) {
	log := &captureLog{err: errors.New("disk full")}
	svc := New(&stubTaxonomies{store: testStore(t)}, log)

	if _, err := svc.Parse(context.Background(), "句子五"); err == nil {
		t.Fatal("expected error when instruction log fails")
	}
}

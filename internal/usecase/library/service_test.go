package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/recitevault/recitevault/internal/domain"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

func testStore(t *testing.T) *taxonomy.Store {
	t.Helper()
	store, err := taxonomy.New(map[taxonomy.Category]taxonomy.Entry{
		taxonomy.Vocab: {MaxIndex: 2, Items: map[int]taxonomy.ItemMeta{
			1: {TitleZH: "水果", TitleEN: "Fruits"},
			2: {TitleZH: "颜色", TitleEN: "Colors"},
		}},
		taxonomy.Sentence: {MaxIndex: 1, Items: map[int]taxonomy.ItemMeta{
			1: {TitleZH: "疑问句", TitleEN: "Questions"},
		}},
		taxonomy.FastStory: {MaxIndex: 1, Items: map[int]taxonomy.ItemMeta{
			1: {TitleZH: "超级玩家", TitleEN: "A super player"},
		}},
	}, nil)
	if err != nil {
		t.Fatalf("taxonomy.New: %v", err)
	}
	return store
}

type stubTaxonomies struct {
	store *taxonomy.Store
}

func (s stubTaxonomies) Load(context.Context) (*taxonomy.Store, error) {
	return s.store, nil
}

type fakeTakes struct {
	dirs  map[string]string
	takes map[string][]string
}

func (f *fakeTakes) FindItemDir(cat taxonomy.Category, idx int, _ taxonomy.ItemMeta) (string, bool) {
	dir, ok := f.dirs[fmt.Sprintf("%s%d", cat, idx)]
	return dir, ok
}

func (f *fakeTakes) Takes(dir string) []string {
	return f.takes[dir]
}

func (f *fakeTakes) Rel(path string) string {
	return strings.TrimPrefix(path, "/vault/")
}

func TestSummary(t *testing.T) {
	takes := &fakeTakes{
		dirs: map[string]string{"VOCAB2": "/vault/Library/Vocab/C02_颜色(Colors)"},
		takes: map[string][]string{
			"/vault/Library/Vocab/C02_颜色(Colors)": {
				"/vault/Library/Vocab/C02_颜色(Colors)/take_20250901_100000.m4a",
				"/vault/Library/Vocab/C02_颜色(Colors)/take_20250830_090000.m4a",
			},
		},
	}
	svc := New(stubTaxonomies{testStore(t)}, takes)

	rows, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want one per item", len(rows))
	}
	if rows[0].Type != taxonomy.Vocab || rows[0].Index != 1 || rows[0].TakeCount != 0 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	covered := rows[1]
	if covered.Index != 2 || covered.TitleZH != "颜色" || covered.TakeCount != 2 {
		t.Errorf("row 1 = %+v", covered)
	}
	if covered.LatestTime != "take_20250901_100000.m4a" {
		t.Errorf("latest_time = %q, want newest take name", covered.LatestTime)
	}
	if rows[2].Type != taxonomy.Sentence || rows[3].Type != taxonomy.FastStory {
		t.Errorf("category order wrong: %v %v", rows[2].Type, rows[3].Type)
	}
}

func TestTakes(t *testing.T) {
	takes := &fakeTakes{
		dirs: map[string]string{"SENTENCE1": "/vault/Library/Sentences/S01_疑问句(Questions)"},
		takes: map[string][]string{
			"/vault/Library/Sentences/S01_疑问句(Questions)": {
				"/vault/Library/Sentences/S01_疑问句(Questions)/take_20250901_100000.m4a",
			},
		},
	}
	svc := New(stubTaxonomies{testStore(t)}, takes)

	got, err := svc.Takes(context.Background(), "sentence", 1)
	if err != nil {
		t.Fatalf("Takes: %v", err)
	}
	if got.Type != taxonomy.Sentence || got.Index != 1 {
		t.Errorf("list = %+v", got)
	}
	if len(got.Takes) != 1 {
		t.Fatalf("takes = %d, want 1", len(got.Takes))
	}
	if got.Takes[0].Name != "take_20250901_100000.m4a" {
		t.Errorf("name = %q", got.Takes[0].Name)
	}
	if got.Takes[0].Path != "Library/Sentences/S01_疑问句(Questions)/take_20250901_100000.m4a" {
		t.Errorf("path = %q, want vault-relative", got.Takes[0].Path)
	}
}

func TestTakes_EmptyItem(t *testing.T) {
	svc := New(stubTaxonomies{testStore(t)}, &fakeTakes{})

	got, err := svc.Takes(context.Background(), "vocab", 1)
	if err != nil {
		t.Fatalf("Takes: %v", err)
	}
	if got.Takes == nil || len(got.Takes) != 0 {
		t.Errorf("takes = %v, want empty non-nil slice", got.Takes)
	}
}

func TestTakes_InvalidCategory(t *testing.T) {
	svc := New(stubTaxonomies{testStore(t)}, &fakeTakes{})

	if _, err := svc.Takes(context.Background(), "poem", 1); !errors.Is(err, domain.ErrInvalidCategory) {
		t.Errorf("err = %v, want ErrInvalidCategory", err)
	}
}

func TestTakes_InvalidIndex(t *testing.T) {
	svc := New(stubTaxonomies{testStore(t)}, &fakeTakes{})

	_, err := svc.Takes(context.Background(), "vocab", 99)
	if !errors.Is(err, domain.ErrInvalidIndex) {
		t.Errorf("err = %v, want ErrInvalidIndex", err)
	}
}

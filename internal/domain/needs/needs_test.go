package needs

import (
	"reflect"
	"testing"

	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

func TestNormalized(t *testing.T) {
	store, err := taxonomy.New(map[taxonomy.Category]taxonomy.Entry{
		taxonomy.Vocab:     {MaxIndex: 10},
		taxonomy.Sentence:  {MaxIndex: 5},
		taxonomy.FastStory: {MaxIndex: 3},
	}, nil)
	if err != nil {
		t.Fatalf("taxonomy.New: %v", err)
	}

	s := Set{}
	s.Add(taxonomy.Vocab, 7)
	s.Add(taxonomy.Vocab, 7)
	s.Add(taxonomy.Vocab, 2)
	s.Add(taxonomy.Vocab, 99)
	s.Add(taxonomy.Sentence, 0)
	s.Add(taxonomy.Sentence, 5)

	got := s.Normalized(store)
	want := Set{
		taxonomy.Vocab:     {2, 7},
		taxonomy.Sentence:  {5},
		taxonomy.FastStory: {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalized = %v, want %v", got, want)
	}
}

package taxonomy

import "testing"

func TestFindCodeRefs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []CodeRef
	}{
		{"simple code", "今天读S05", []CodeRef{{Sentence, 5}}},
		{"leading zero dropped", "C07", []CodeRef{{Vocab, 7}}},
		{"lowercase and space", "p 12", []CodeRef{{FastStory, 12}}},
		{"glued to word is rejected", "CSP05x", nil},
		{"inside word is rejected", "scope7", nil},
		{"multiple refs in order", "S05和C3", []CodeRef{{Sentence, 5}, {Vocab, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindCodeRefs(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("FindCodeRefs(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ref %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFindLooseCodeRefs(t *testing.T) {
	got := FindLooseCodeRefs("补交c07p2")
	want := []CodeRef{{Vocab, 7}, {FastStory, 2}}
	if len(got) != len(want) {
		t.Fatalf("FindLooseCodeRefs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ref %d = %v, want %v", i, got[i], want[i])
		}
	}
}

package claimctx

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSuggest(t *testing.T) {
	values := []string{"Marcus", "Alice", "Malcolm", "Annemarie", "Bob"}

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"prefix first", "ma", 0, []string{"Marcus", "Malcolm", "Annemarie"}},
		{"case insensitive", "ALI", 0, []string{"Alice"}},
		{"empty query keeps order", "", 2, []string{"Marcus", "Alice"}},
		{"no match", "zed", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(values, tt.query, tt.limit)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Suggest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSuggest_CapsAtMax(t *testing.T) {
	var values []string
	for i := 0; i < 40; i++ {
		values = append(values, fmt.Sprintf("Character %02d", i))
	}

	got := Suggest(values, "char", 100)
	if len(got) != MaxSuggestions {
		t.Errorf("expected %d suggestions, got %d", MaxSuggestions, len(got))
	}
}

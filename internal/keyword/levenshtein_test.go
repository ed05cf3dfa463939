package keyword

import (
	"math"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"identical empty", "", "", 0},
		{"identical word", "copy", "copy", 0},
		{"identical unicode", "コピー", "コピー", 0},

		{"empty a", "", "paste", 5},
		{"empty b", "paste", "", 5},

		{"one substitution", "cut", "cat", 1},
		{"one insertion", "tab", "tabs", 1},
		{"one deletion", "undo", "und", 1},

		{"kitten to sitting", "kitten", "sitting", 3},
		{"saturday to sunday", "saturday", "sunday", 3},

		{"typo in action", "duplicate line", "duplciate line", 2},
		{"missing letter", "bookmark", "bokmark", 1},

		{"case difference", "Copy", "copy", 1},
		{"unicode substitution", "café", "cafe", 1},

		// Transposition costs two edits in plain Levenshtein.
		{"transposition ab-ba", "ab", "ba", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LevenshteinDistance(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
			if rev := LevenshteinDistance(tt.b, tt.a); rev != result {
				t.Errorf("LevenshteinDistance is not symmetric: (%q,%q)=%d, (%q,%q)=%d",
					tt.a, tt.b, result, tt.b, tt.a, rev)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"identical", "find", "find", 1.0},
		{"one empty", "find", "", 0.0},
		{"kitten sitting", "kitten", "sitting", 1.0 - 3.0/7.0},
		{"one edit of four", "undo", "undo!", 1.0 - 1.0/5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
	if got := Similarity("kitten", "sitting"); math.Abs(got-0.571) > 0.001 {
		t.Errorf("Similarity(kitten, sitting) = %f, want ~0.571", got)
	}
}

func BenchmarkLevenshteinDistance_Short(b *testing.B) {
	for i := 0; i < b.N; i++ {
		LevenshteinDistance("kitten", "sitting")
	}
}

func BenchmarkLevenshteinDistance_Long(bench *testing.B) {
	strA := "move line up in the current editor group"
	strB := "mvoe lien up in teh current editr group"
	for i := 0; i < bench.N; i++ {
		LevenshteinDistance(strA, strB)
	}
}

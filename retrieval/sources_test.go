package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pdfrag/types"
)

func match(file, label string) types.Match {
	return types.Match{
		Content: "text",
		Metadata: map[string]string{
			types.MetaFileName:  file,
			types.MetaPageLabel: label,
		},
	}
}

func TestSourcesSortedByFileThenNumericPage(t *testing.T) {
	matches := []types.Match{
		match("doc.pdf", "9"),
		match("doc.pdf", "10"),
		match("abc.pdf", "2"),
	}

	got := Sources(matches)
	want := []string{
		"abc.pdf (Page 2)",
		"doc.pdf (Page 9)",
		"doc.pdf (Page 10)",
	}
	assert.Equal(t, want, got)
}

func TestSourcesDeduplicates(t *testing.T) {
	matches := []types.Match{
		match("doc.pdf", "3"),
		match("doc.pdf", "3"),
		match("doc.pdf", "1"),
	}

	got := Sources(matches)
	assert.Equal(t, []string{"doc.pdf (Page 1)", "doc.pdf (Page 3)"}, got)
}

func TestSourcesCaseInsensitiveFileSort(t *testing.T) {
	matches := []types.Match{
		match("Zebra.pdf", "1"),
		match("apple.pdf", "1"),
		match("Banana.pdf", "1"),
	}

	got := Sources(matches)
	assert.Equal(t, []string{
		"apple.pdf (Page 1)",
		"Banana.pdf (Page 1)",
		"Zebra.pdf (Page 1)",
	}, got)
}

func TestSourcesMissingMetadata(t *testing.T) {
	matches := []types.Match{
		{Content: "text", Metadata: map[string]string{}},
	}
	assert.Equal(t, []string{"Unknown (Page 0)"}, Sources(matches))
}

func TestSourcesEmptyMatches(t *testing.T) {
	assert.Empty(t, Sources(nil))
}

func TestResolvePageFallback(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]string
		want string
	}{
		{"label wins", map[string]string{types.MetaPageLabel: "5", types.MetaPageNumber: "7"}, "5"},
		{"number fallback", map[string]string{types.MetaPageNumber: "7"}, "7"},
		{"nothing", map[string]string{}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePage(tt.meta))
		})
	}
}

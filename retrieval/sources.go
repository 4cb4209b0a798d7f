package retrieval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pdfrag/types"
)

type sourceRef struct {
	file string
	page string
}

// ResolvePage returns the citation page for a match. Canonical
// fallback order: page_label, then page_number, then "0". Both the
// batch and the streaming path resolve through here.
func ResolvePage(metadata map[string]string) string {
	if v := metadata[types.MetaPageLabel]; v != "" {
		return v
	}
	if v := metadata[types.MetaPageNumber]; v != "" {
		return v
	}
	return "0"
}

// Sources turns retrieved matches into user-facing citations:
// "<file> (Page <n>)", sorted by file name (case-insensitive) then
// numerically by page, with exact duplicates removed in first
// occurrence order.
func Sources(matches []types.Match) []string {
	refs := make([]sourceRef, 0, len(matches))
	for _, m := range matches {
		file := m.Metadata[types.MetaFileName]
		if file == "" {
			file = "Unknown"
		}
		refs = append(refs, sourceRef{file: file, page: ResolvePage(m.Metadata)})
	}

	sort.SliceStable(refs, func(i, j int) bool {
		fi, fj := strings.ToLower(refs[i].file), strings.ToLower(refs[j].file)
		if fi != fj {
			return fi < fj
		}
		// Numeric comparison: "10" sorts after "9".
		return pageNum(refs[i].page) < pageNum(refs[j].page)
	})

	seen := make(map[string]struct{}, len(refs))
	sources := make([]string, 0, len(refs))
	for _, ref := range refs {
		s := fmt.Sprintf("%s (Page %s)", ref.file, ref.page)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		sources = append(sources, s)
	}
	return sources
}

func pageNum(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

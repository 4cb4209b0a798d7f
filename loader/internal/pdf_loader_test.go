package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"pdfrag/types"
)

// fakeExtractor returns canned page texts per file name and fails for
// names listed in broken.
type fakeExtractor struct {
	pages  map[string][]string
	broken map[string]bool
}

func (f *fakeExtractor) ExtractPages(path string) ([]string, error) {
	name := filepath.Base(path)
	if f.broken[name] {
		return nil, errors.New("corrupt file")
	}
	return f.pages[name], nil
}

func writeDummyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadDirPageLabels(t *testing.T) {
	dir := t.TempDir()
	writeDummyFiles(t, dir, "doc.pdf")

	loader := NewPDFLoader(&fakeExtractor{
		pages: map[string][]string{
			"doc.pdf": {"page one", "page two", "page three"},
		},
	})

	docs, err := loader.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	pages := docs[0].Pages
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, page := range pages {
		want := strconv.Itoa(i + 1)
		if got := page.Metadata[types.MetaPageLabel]; got != want {
			t.Errorf("page %d: page_label = %q, want %q", i, got, want)
		}
		if got := page.Metadata[types.MetaFileName]; got != "doc.pdf" {
			t.Errorf("page %d: file_name = %q, want doc.pdf", i, got)
		}
	}
}

func TestLoadDirSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeDummyFiles(t, dir, "bad.pdf", "good.pdf")

	loader := NewPDFLoader(&fakeExtractor{
		pages: map[string][]string{
			"good.pdf": {"some text"},
		},
		broken: map[string]bool{"bad.pdf": true},
	})

	docs, err := loader.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].FileName != "good.pdf" {
		t.Fatalf("expected only good.pdf to survive, got %+v", docs)
	}
}

func TestLoadDirIgnoresNonPDF(t *testing.T) {
	dir := t.TempDir()
	writeDummyFiles(t, dir, "doc.pdf", "notes.txt", "image.png")

	loader := NewPDFLoader(&fakeExtractor{
		pages: map[string][]string{"doc.pdf": {"text"}},
	})

	docs, err := loader.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
}

func TestLoadDirEmptyPageDoesNotCrash(t *testing.T) {
	dir := t.TempDir()
	writeDummyFiles(t, dir, "doc.pdf")

	loader := NewPDFLoader(&fakeExtractor{
		pages: map[string][]string{"doc.pdf": {"text", "", "more text"}},
	})

	docs, err := loader.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs[0].Pages) != 3 {
		t.Fatalf("empty page must still be loaded, got %d pages", len(docs[0].Pages))
	}
	if docs[0].Pages[1].Content != "" {
		t.Errorf("expected empty content for page 2")
	}
	if docs[0].Pages[1].Metadata[types.MetaPageLabel] != "2" {
		t.Errorf("empty page keeps its label, got %q", docs[0].Pages[1].Metadata[types.MetaPageLabel])
	}
}

func TestPagesMarkExcludedMetadata(t *testing.T) {
	dir := t.TempDir()
	writeDummyFiles(t, dir, "doc.pdf")

	loader := NewPDFLoader(&fakeExtractor{
		pages: map[string][]string{"doc.pdf": {"text"}},
	})

	docs, err := loader.LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	page := docs[0].Pages[0]
	if page.Metadata[types.MetaFileSize] == "" {
		t.Error("file_size must be present in persisted metadata")
	}
	excluded := map[string]bool{}
	for _, k := range page.ExcludedFromPrompt {
		excluded[k] = true
	}
	if !excluded[types.MetaFileSize] || !excluded[types.MetaCreationDate] {
		t.Errorf("file_size and creation_date must be prompt-excluded, got %v", page.ExcludedFromPrompt)
	}
}

func TestFlatten(t *testing.T) {
	docs := []types.Document{
		{FileName: "a.pdf", Pages: []types.Page{{Content: "1"}, {Content: "2"}}},
		{FileName: "b.pdf", Pages: []types.Page{{Content: "3"}}},
	}
	pages := Flatten(docs)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[2].Content != "3" {
		t.Errorf("encounter order lost: %+v", pages)
	}
}

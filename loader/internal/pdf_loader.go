package internal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"pdfrag/types"
)

// excludedMetaKeys are persisted with every page but never rendered
// into an LLM prompt.
var excludedMetaKeys = []string{types.MetaFileSize, types.MetaCreationDate}

// PDFLoader turns a folder of PDFs into page-level documents with
// provenance metadata attached.
type PDFLoader struct {
	extractor PageExtractor
}

func NewPDFLoader(extractor PageExtractor) *PDFLoader {
	return &PDFLoader{extractor: extractor}
}

// LoadDir enumerates the PDFs directly under dir, in name order, and
// loads each one. A file that fails extraction is reported and
// skipped; the rest of the folder is still processed.
func (l *PDFLoader) LoadDir(dir string) ([]types.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	log.Printf("Found %d PDF files in %s", len(names), dir)

	var docs []types.Document
	for _, name := range names {
		log.Printf("Processing: %s", name)
		doc, err := l.loadFile(filepath.Join(dir, name), name)
		if err != nil {
			log.Printf("skipping %s: %v", name, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// loadFile extracts the page texts of one file and tags each page with
// file_name and a 1-based page_label, overriding whatever page number
// the extraction step may have produced.
func (l *PDFLoader) loadFile(path, name string) (types.Document, error) {
	texts, err := l.extractor.ExtractPages(path)
	if err != nil {
		return types.Document{}, err
	}

	info, statErr := os.Stat(path)

	pages := make([]types.Page, 0, len(texts))
	for i, text := range texts {
		meta := map[string]string{
			types.MetaFileName:  name,
			types.MetaPageLabel: strconv.Itoa(i + 1),
		}
		if statErr == nil {
			meta[types.MetaFileSize] = strconv.FormatInt(info.Size(), 10)
			meta[types.MetaCreationDate] = info.ModTime().UTC().Format(time.RFC3339)
		}

		pages = append(pages, types.Page{
			Content:            text,
			Metadata:           meta,
			ExcludedFromPrompt: excludedMetaKeys,
		})
		log.Printf("   indexed page %s of %s", meta[types.MetaPageLabel], name)
	}

	return types.Document{FileName: name, Pages: pages}, nil
}

// Flatten collects the pages of all documents in encounter order,
// ready for the index build.
func Flatten(docs []types.Document) []types.Page {
	var pages []types.Page
	for _, doc := range docs {
		pages = append(pages, doc.Pages...)
	}
	return pages
}

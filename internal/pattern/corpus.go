package pattern

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ostrander/smithy/internal/checksum"
	"github.com/ostrander/smithy/internal/models"
	"github.com/ostrander/smithy/internal/storage"
)

var (
	classRe       = regexp.MustCompile(`class\s+(\w+)\s+implements\s+INode`)
	labelRe       = regexp.MustCompile("this\\.label\\s*=\\s*['\"`]([^'\"`]+)['\"`]")
	descriptionRe = regexp.MustCompile("this\\.description\\s*=\\s*['\"`]([^'\"`]+)['\"`]")
	categoryRe    = regexp.MustCompile("this\\.category\\s*=\\s*['\"`]([^'\"`]+)['\"`]")
	versionRe     = regexp.MustCompile(`this\.version\s*=\s*([0-9.]+)`)
)

// loadCorpus reads every snippet in the corpus and parses it into a
// document. Files without a recognizable component structure are skipped
// with the returned skipped count.
func loadCorpus(corpus *storage.Corpus) (docs []models.PatternDocument, skipped int, err error) {
	files, err := corpus.List()
	if err != nil {
		return nil, 0, err
	}

	for _, f := range files {
		data, err := corpus.Read(f.Path)
		if err != nil {
			return nil, 0, fmt.Errorf("pattern: read snippet %s: %w", f.Path, err)
		}
		doc, ok := parseSnippet(f.Path, data)
		if !ok {
			skipped++
			continue
		}
		doc.Position = len(docs)
		docs = append(docs, doc)
	}
	return docs, skipped, nil
}

// parseSnippet extracts component metadata from snippet source. A snippet
// must at least declare an INode class with a label to be indexable.
func parseSnippet(path string, data []byte) (models.PatternDocument, bool) {
	src := string(data)
	doc := models.PatternDocument{
		Category:   "custom",
		Platform:   models.DefaultPlatform,
		Version:    "1.0",
		Source:     src,
		SourceHash: checksum.Sum(data),
	}

	if m := classRe.FindStringSubmatch(src); m != nil {
		doc.Name = m[1]
	} else {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if m := labelRe.FindStringSubmatch(src); m != nil {
		doc.Label = m[1]
	}
	if m := descriptionRe.FindStringSubmatch(src); m != nil {
		doc.Description = m[1]
	}
	if m := categoryRe.FindStringSubmatch(src); m != nil {
		doc.Category = m[1]
	}
	if m := versionRe.FindStringSubmatch(src); m != nil {
		doc.Version = m[1]
	}

	if doc.Name == "" || doc.Label == "" {
		return models.PatternDocument{}, false
	}
	return doc, true
}

// documentText builds the searchable text that gets embedded for a document.
func documentText(d models.PatternDocument) string {
	parts := []string{
		"Component: " + d.Name,
		"Label: " + d.Label,
		"Description: " + d.Description,
		"Category: " + d.Category,
	}
	if n := strings.Count(d.Source, "\n") + 1; d.Source != "" {
		parts = append(parts, fmt.Sprintf("Lines of Code: %d", n))
	}
	return strings.Join(parts, " | ")
}

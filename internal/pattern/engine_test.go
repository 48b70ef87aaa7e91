package pattern

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ostrander/smithy/internal/apperr"
	"github.com/ostrander/smithy/internal/storage"
)

// keywordEmbedder maps texts onto fixed keyword axes so similarity ranking is
// fully predictable in tests.
type keywordEmbedder struct {
	calls    int
	embedded []string
}

var keywordAxes = []string{"math", "weather", "translate"}

func (k *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := k.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (k *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	k.calls++
	k.embedded = append(k.embedded, texts...)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(keywordAxes)+1)
		vec[len(keywordAxes)] = 0.1 // keeps zero-keyword texts comparable
		for j, axis := range keywordAxes {
			if strings.Contains(strings.ToLower(text), axis) {
				vec[j] = 1
			}
		}
		out[i] = vec
	}
	return out, nil
}

func (k *keywordEmbedder) Dimension() int { return len(keywordAxes) + 1 }

func snippet(name, label, description, category string) string {
	return fmt.Sprintf(`class %s implements INode {
    constructor() {
        this.label = '%s'
        this.description = '%s'
        this.category = '%s'
    }
}
`, name, label, description, category)
}

func testEngine(t *testing.T) (*Engine, *keywordEmbedder, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Calculator.ts":  snippet("Calculator", "Calculator", "math operations on numbers", "utilities"),
		"Weather.ts":     snippet("Weather", "Weather", "weather forecast lookup", "data"),
		"Translator.ts":  snippet("Translator", "Translator", "translate text between languages", "utilities"),
		"notes/skip.txt": "not indexed",
	}
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	corpus, err := storage.NewCorpus(dir)
	if err != nil {
		t.Fatalf("NewCorpus: %v", err)
	}

	emb := &keywordEmbedder{}
	eng := NewEngine(corpus, testPatternStore(t), emb, nil)
	return eng, emb, dir
}

func TestIndexBuildsDocuments(t *testing.T) {
	eng, emb, _ := testEngine(t)

	n, err := eng.Index(context.Background(), false)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if n != 3 {
		t.Fatalf("indexed = %d, want 3", n)
	}
	if emb.calls != 1 {
		t.Errorf("embed batches = %d, want 1", emb.calls)
	}

	stats, err := eng.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalDocuments != 3 || !stats.EmbeddingPresent {
		t.Errorf("stats = %+v", stats)
	}
}

func TestIndexReusesUnchangedEmbeddings(t *testing.T) {
	eng, emb, dir := testEngine(t)
	ctx := context.Background()

	if _, err := eng.Index(ctx, false); err != nil {
		t.Fatalf("first Index: %v", err)
	}
	embedded := len(emb.embedded)

	// Unchanged corpus: nothing to embed.
	if _, err := eng.Index(ctx, false); err != nil {
		t.Fatalf("second Index: %v", err)
	}
	if len(emb.embedded) != embedded {
		t.Errorf("unchanged reindex embedded %d new texts", len(emb.embedded)-embedded)
	}

	// One modified file re-embeds exactly that document.
	modified := snippet("Calculator", "Calculator", "math operations, now with powers", "utilities")
	if err := os.WriteFile(filepath.Join(dir, "Calculator.ts"), []byte(modified), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Index(ctx, false); err != nil {
		t.Fatalf("third Index: %v", err)
	}
	if got := len(emb.embedded) - embedded; got != 1 {
		t.Errorf("changed reindex embedded %d texts, want 1", got)
	}

	// Force rebuilds everything.
	if _, err := eng.Index(ctx, true); err != nil {
		t.Fatalf("forced Index: %v", err)
	}
	if got := len(emb.embedded) - embedded - 1; got != 3 {
		t.Errorf("forced reindex embedded %d texts, want 3", got)
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	eng, _, _ := testEngine(t)
	ctx := context.Background()
	if _, err := eng.Index(ctx, false); err != nil {
		t.Fatalf("Index: %v", err)
	}

	matches, err := eng.Search(ctx, "math helper", 2, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len = %d, want 2", len(matches))
	}
	if matches[0].Document.Name != "Calculator" {
		t.Errorf("top match = %s, want Calculator", matches[0].Document.Name)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("scores not descending: %v >= %v wanted", matches[0].Score, matches[1].Score)
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	eng, _, _ := testEngine(t)
	ctx := context.Background()
	_, _ = eng.Index(ctx, false)

	matches, err := eng.Search(ctx, "math helper", 10, "data")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range matches {
		if m.Document.Category != "data" {
			t.Errorf("match %s outside category filter", m.Document.Name)
		}
	}
	if len(matches) != 1 {
		t.Errorf("len = %d, want 1", len(matches))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	eng, _, _ := testEngine(t)
	if _, err := eng.Search(context.Background(), "", 5, ""); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestFindSimilar(t *testing.T) {
	eng, _, _ := testEngine(t)
	ctx := context.Background()
	_, _ = eng.Index(ctx, false)

	matches, err := eng.FindSimilar(ctx, "weather data fetcher", "", 0)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(matches) == 0 || matches[0].Document.Name != "Weather" {
		t.Fatalf("matches = %+v", matches)
	}

	if _, err := eng.FindSimilar(ctx, "", "", 0); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("empty description = %v, want ErrInvalid", err)
	}
}

func TestGetByNameNotFound(t *testing.T) {
	eng, _, _ := testEngine(t)
	_, _ = eng.Index(context.Background(), false)

	if _, err := eng.GetByName("Missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	doc, err := eng.GetByName("Weather")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if doc.Category != "data" {
		t.Errorf("category = %q", doc.Category)
	}
}

func TestClampK(t *testing.T) {
	if got := clampK(0, DefaultSearchResults); got != DefaultSearchResults {
		t.Errorf("clampK(0) = %d", got)
	}
	if got := clampK(-3, DefaultSimilarResults); got != DefaultSimilarResults {
		t.Errorf("clampK(-3) = %d", got)
	}
	if got := clampK(999, DefaultSearchResults); got != MaxResults {
		t.Errorf("clampK(999) = %d", got)
	}
	if got := clampK(7, DefaultSearchResults); got != 7 {
		t.Errorf("clampK(7) = %d", got)
	}
}

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func testCorpus(t *testing.T, files map[string]string) *Corpus {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c, err := NewCorpus(dir)
	if err != nil {
		t.Fatalf("NewCorpus: %v", err)
	}
	return c
}

func TestNewCorpusRequiresDirectory(t *testing.T) {
	if _, err := NewCorpus(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCorpus(file); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestListFiltersAndRecurses(t *testing.T) {
	c := testCorpus(t, map[string]string{
		"Calculator.ts":       "a",
		"nested/Weather.js":   "b",
		"README.md":           "skip",
		"nested/deep/note.txt": "skip",
	})

	files, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len = %d: %v", len(files), files)
	}
	// Lexicographic walk order.
	if files[0].Path != "Calculator.ts" || files[1].Path != filepath.Join("nested", "Weather.js") {
		t.Errorf("files = %v", files)
	}
}

func TestReadReturnsContent(t *testing.T) {
	c := testCorpus(t, map[string]string{"a.ts": "class A {}"})

	data, err := c.Read("a.ts")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "class A {}" {
		t.Errorf("data = %q", data)
	}
}

func TestReadRejectsTraversal(t *testing.T) {
	c := testCorpus(t, map[string]string{"a.ts": "x"})

	if _, err := c.Read("../outside.ts"); err == nil {
		t.Error("expected traversal rejection")
	}
	if _, err := c.Read("/etc/passwd"); err == nil {
		t.Error("expected absolute path rejection")
	}
	if _, err := c.Read("nested/../../outside.ts"); err == nil {
		t.Error("expected nested traversal rejection")
	}
}

// Package storage provides read-only access to the pattern corpus directory.
package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SnippetFile is a corpus file discovered by List.
type SnippetFile struct {
	Path string // relative to the corpus root
}

// Corpus reads reference snippet files from a directory tree.
type Corpus struct {
	root string // absolute path to the corpus directory
}

// NewCorpus creates a Corpus rooted at the given directory.
// The directory must already exist.
func NewCorpus(root string) (*Corpus, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Corpus{root: abs}, nil
}

// Root returns the absolute corpus root.
func (c *Corpus) Root() string {
	return c.root
}

// safePath resolves a relative path against the corpus root and rejects
// any result that escapes it (directory traversal).
func (c *Corpus) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(c.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, c.root+string(os.PathSeparator)) && abs != c.root {
		return "", fmt.Errorf("storage: path escapes corpus root: %s", rel)
	}
	return abs, nil
}

// List walks the corpus and returns every .ts and .js file, sorted by the
// walk order (lexicographic), which defines document insertion order.
func (c *Corpus) List() ([]SnippetFile, error) {
	var out []SnippetFile
	err := filepath.WalkDir(c.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(d.Name())
		if ext != ".ts" && ext != ".js" {
			return nil
		}
		rel, relErr := filepath.Rel(c.root, p)
		if relErr != nil {
			return relErr
		}
		out = append(out, SnippetFile{Path: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a corpus file.
func (c *Corpus) Read(path string) ([]byte, error) {
	abs, err := c.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Package testutil provides shared test helpers: deterministic fakes for the
// embedding and generation backends plus temporary stores.
package testutil

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"testing"

	"github.com/ostrander/smithy/internal/pattern"
	"github.com/ostrander/smithy/internal/registry"
	"github.com/ostrander/smithy/internal/storage"
)

// TestRegistry creates a temporary registry store that is automatically
// cleaned up.
func TestRegistry(t *testing.T) *registry.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.json")
	store, err := registry.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store
}

// TestPatternStore creates a temporary SQLite pattern store.
func TestPatternStore(t *testing.T) *pattern.Store {
	t.Helper()
	f, err := os.CreateTemp("", "smithy-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	store, err := pattern.OpenStore(f.Name())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestCorpus creates a temporary corpus directory populated with the given
// files (relative path -> content).
func TestCorpus(t *testing.T, files map[string]string) *storage.Corpus {
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
	corpus, err := storage.NewCorpus(dir)
	if err != nil {
		t.Fatalf("NewCorpus: %v", err)
	}
	return corpus
}

// FakeEmbedder produces deterministic vectors from text hashes so tests can
// assert ranking without a network backend. Calls counts EmbedBatch
// invocations and Texts records every embedded string.
type FakeEmbedder struct {
	Dim   int
	Calls int
	Texts []string
	Err   error
}

// Embed returns the deterministic vector for one text.
func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one deterministic vector per input text.
func (f *FakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.Calls++
	f.Texts = append(f.Texts, texts...)
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vector(text)
	}
	return out, nil
}

// Dimension reports the fake vector width.
func (f *FakeEmbedder) Dimension() int {
	return f.dim()
}

func (f *FakeEmbedder) dim() int {
	if f.Dim <= 0 {
		return 8
	}
	return f.Dim
}

func (f *FakeEmbedder) vector(text string) []float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, f.dim())
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/1000 - 0.5
	}
	return vec
}

// StubGenerator replays canned responses in order. When responses run out the
// last one repeats; a nil list fails every call.
type StubGenerator struct {
	Responses []string
	Calls     int
	Prompts   []string
	Err       error
}

// Complete returns the next canned response.
func (s *StubGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	s.Calls++
	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", fmt.Errorf("stub generator has no responses")
	}
	i := s.Calls - 1
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	return s.Responses[i], nil
}

// ValidComponent returns TypeScript source that passes every validator check,
// for the given class name.
func ValidComponent(name string) string {
	return fmt.Sprintf(`import { INode, INodeData, INodeParams } from '../../../src/Interface'

class %s implements INode {
    label: string
    name: string
    version: number
    type: string
    icon: string
    category: string
    description: string
    baseClasses: string[]
    inputs: INodeParams[]

    constructor() {
        this.label = '%s'
        this.name = '%s'
        this.version = 1.0
        this.type = '%s'
        this.icon = 'node.svg'
        this.category = 'utilities'
        this.description = 'test component'
        this.baseClasses = [this.type]
        this.inputs = []
    }

    async init(nodeData: INodeData, _: string): Promise<string> {
        try {
            const value = nodeData.inputs?.value
            if (!value) {
                throw new Error('value is required')
            }
            return await Promise.resolve(String(value))
        } catch (error) {
            throw new Error('init failed: ' + error)
        }
    }
}

module.exports = { nodeClass: %s }
`, name, name, name, name, name)
}

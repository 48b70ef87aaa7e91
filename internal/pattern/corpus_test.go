package pattern

import (
	"strings"
	"testing"
)

const calculatorSnippet = `import { INode, INodeData } from '../../../src/Interface'

class Calculator implements INode {
    constructor() {
        this.label = 'Calculator'
        this.description = 'Performs arithmetic on two numbers'
        this.category = 'utilities'
        this.version = 1.2
    }
}

module.exports = { nodeClass: Calculator }
`

func TestParseSnippetExtractsMetadata(t *testing.T) {
	doc, ok := parseSnippet("tools/Calculator.ts", []byte(calculatorSnippet))
	if !ok {
		t.Fatal("expected snippet to parse")
	}
	if doc.Name != "Calculator" {
		t.Errorf("name = %q", doc.Name)
	}
	if doc.Label != "Calculator" {
		t.Errorf("label = %q", doc.Label)
	}
	if doc.Description != "Performs arithmetic on two numbers" {
		t.Errorf("description = %q", doc.Description)
	}
	if doc.Category != "utilities" {
		t.Errorf("category = %q", doc.Category)
	}
	if doc.Version != "1.2" {
		t.Errorf("version = %q", doc.Version)
	}
	if doc.SourceHash == "" {
		t.Error("source hash empty")
	}
}

func TestParseSnippetDefaults(t *testing.T) {
	src := `class Thing implements INode {
    constructor() {
        this.label = 'Thing'
    }
}`
	doc, ok := parseSnippet("misc/Thing.ts", []byte(src))
	if !ok {
		t.Fatal("expected snippet to parse")
	}
	if doc.Category != "custom" {
		t.Errorf("category = %q, want custom", doc.Category)
	}
	if doc.Platform != "flowise" {
		t.Errorf("platform = %q, want flowise", doc.Platform)
	}
	if doc.Version != "1.0" {
		t.Errorf("version = %q, want 1.0", doc.Version)
	}
}

func TestParseSnippetNameFallsBackToFilename(t *testing.T) {
	src := `// not a class declaration
this.label = 'Loose Snippet'
`
	doc, ok := parseSnippet("snippets/LooseSnippet.ts", []byte(src))
	if !ok {
		t.Fatal("expected snippet to parse")
	}
	if doc.Name != "LooseSnippet" {
		t.Errorf("name = %q, want LooseSnippet", doc.Name)
	}
}

func TestParseSnippetRejectsUnlabeled(t *testing.T) {
	if _, ok := parseSnippet("x.ts", []byte("const x = 1\n")); ok {
		t.Error("snippet without a label should be skipped")
	}
}

func TestDocumentText(t *testing.T) {
	doc, _ := parseSnippet("tools/Calculator.ts", []byte(calculatorSnippet))
	text := documentText(doc)

	for _, want := range []string{
		"Component: Calculator",
		"Label: Calculator",
		"Description: Performs arithmetic on two numbers",
		"Category: utilities",
		"Lines of Code:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("document text missing %q: %s", want, text)
		}
	}
	if !strings.Contains(text, " | ") {
		t.Errorf("fields should be pipe-separated: %s", text)
	}
}

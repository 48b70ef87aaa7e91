package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ostrander/smithy/internal/models"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:typescript|ts|javascript|js)?\n(.*?)```")

// buildCodePrompt renders the generation prompt from the spec and any
// retrieved reference patterns.
func buildCodePrompt(spec *models.ComponentSpec, matches []PatternMatch) string {
	var b strings.Builder

	b.WriteString("Generate a TypeScript workflow component.\n\n")
	fmt.Fprintf(&b, "Class name: %s\n", spec.Name)
	fmt.Fprintf(&b, "Display name: %s\n", spec.DisplayName)
	fmt.Fprintf(&b, "Description: %s\n", spec.Description)
	fmt.Fprintf(&b, "Category: %s\n", spec.Category)
	fmt.Fprintf(&b, "Platforms: %s\n", strings.Join(spec.Platforms, ", "))

	b.WriteString("\nRequirements:\n")
	for _, req := range spec.Requirements {
		fmt.Fprintf(&b, "- %s\n", req)
	}
	if len(spec.Dependencies) > 0 {
		fmt.Fprintf(&b, "\nAllowed dependencies: %s\n", strings.Join(spec.Dependencies, ", "))
	}
	writeFields(&b, "Inputs", spec.Inputs)
	writeFields(&b, "Outputs", spec.Outputs)

	if len(matches) > 0 {
		b.WriteString("\nSimilar existing components, follow their conventions:\n")
		for _, m := range matches {
			fmt.Fprintf(&b, "- %s (%s): %s\n", m.Name, m.Category, m.Description)
		}
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Declare `class " + spec.Name + " implements INode` with a constructor assigning label, name, version, type, icon, category, description, baseClasses and inputs.\n")
	b.WriteString("- Implement `async init(nodeData: INodeData, ...): Promise<T>`.\n")
	b.WriteString("- End with `module.exports = { nodeClass: " + spec.Name + " }`.\n")
	b.WriteString("- Import INode, INodeData and INodeParams from '../../../src/Interface'.\n")
	b.WriteString("- Validate inputs and throw meaningful errors inside try/catch.\n")
	b.WriteString("- Never use eval, new Function, child_process or path traversal.\n")
	b.WriteString("\nRespond with a single TypeScript code block and no commentary.\n")
	return b.String()
}

// buildFixPrompt appends validation failures as corrective feedback.
func buildFixPrompt(spec *models.ComponentSpec, code string, errs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The generated component %s failed validation.\n\nErrors:\n", spec.Name)
	for _, e := range errs {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	b.WriteString("\nCurrent code:\n```typescript\n")
	b.WriteString(code)
	b.WriteString("\n```\n\nFix every error and respond with the complete corrected ")
	b.WriteString("TypeScript code block and no commentary.\n")
	return b.String()
}

// buildDocsPrompt asks for prose usage documentation.
func buildDocsPrompt(spec *models.ComponentSpec, code string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write concise Markdown usage documentation for the %s component (%s).\n",
		spec.DisplayName, spec.Description)
	b.WriteString("Cover: what it does, its inputs, its outputs, and one usage example.\n")
	b.WriteString("\nComponent code:\n```typescript\n")
	b.WriteString(code)
	b.WriteString("\n```\n")
	return b.String()
}

// extractCode pulls the first fenced code block out of a model response, or
// returns the trimmed response when the model skipped the fence.
func extractCode(response string) string {
	if m := codeFenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(response)
}

func writeFields(b *strings.Builder, title string, fields []models.FieldSpec) {
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, f := range fields {
		required := ""
		if f.Required {
			required = ", required"
		}
		fmt.Fprintf(b, "- %s (%s%s): %s\n", f.Name, f.Type, required, f.Label)
	}
}

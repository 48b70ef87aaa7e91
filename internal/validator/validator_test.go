package validator

import (
	"strings"
	"testing"
)

const validComponent = `import { INode, INodeData, INodeParams } from '../../../src/Interface'

class Calculator implements INode {
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
        this.label = 'Calculator'
        this.name = 'calculator'
        this.version = 1.0
        this.type = 'Calculator'
        this.icon = 'calc.svg'
        this.category = 'utilities'
        this.description = 'Performs arithmetic'
        this.baseClasses = [this.type]
        this.inputs = []
    }

    async init(nodeData: INodeData, _: string): Promise<number> {
        try {
            const a = Number(nodeData.inputs?.a)
            if (Number.isNaN(a)) {
                throw new Error('a must be a number')
            }
            return await Promise.resolve(a)
        } catch (error) {
            throw new Error('init failed: ' + error)
        }
    }
}

module.exports = { nodeClass: Calculator }
`

func hasError(res Result, substr string) bool {
	for _, e := range res.Errors {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func hasWarning(res Result, substr string) bool {
	for _, w := range res.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestValidComponentPasses(t *testing.T) {
	res := New(nil).Validate(validComponent)
	if !res.IsValid {
		t.Fatalf("expected valid, errors: %v", res.Errors)
	}
	if res.ComponentName != "Calculator" {
		t.Errorf("component name = %q", res.ComponentName)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestMissingClassDeclaration(t *testing.T) {
	res := New(nil).Validate("const x = 1")
	if res.IsValid {
		t.Fatal("expected invalid")
	}
	if !hasError(res, "missing class declaration") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestMissingBaseClassesIsError(t *testing.T) {
	code := strings.Replace(validComponent, "this.baseClasses = [this.type]", "", 1)
	res := New(nil).Validate(code)
	if res.IsValid {
		t.Fatal("expected invalid")
	}
	if !hasError(res, "this.baseClasses") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestMissingOptionalPropertyIsWarning(t *testing.T) {
	code := strings.Replace(validComponent, "this.icon = 'calc.svg'\n        ", "", 1)
	res := New(nil).Validate(code)
	if !res.IsValid {
		t.Fatalf("icon should only warn, errors: %v", res.Errors)
	}
	if !hasWarning(res, "this.icon") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestUnbalancedBraces(t *testing.T) {
	res := New(nil).Validate(validComponent + "\n{")
	if !hasError(res, "unbalanced braces") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestInvalidInitSignature(t *testing.T) {
	code := strings.Replace(validComponent,
		"async init(nodeData: INodeData, _: string): Promise<number>",
		"init(data: any)", 1)
	res := New(nil).Validate(code)
	if res.IsValid {
		t.Fatal("expected invalid")
	}
	if !hasError(res, "init method signature") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestExportMismatch(t *testing.T) {
	code := strings.Replace(validComponent,
		"module.exports = { nodeClass: Calculator }",
		"module.exports = { nodeClass: Other }", 1)
	res := New(nil).Validate(code)
	if !hasError(res, "does not match exported name") {
		t.Errorf("errors = %v", res.Errors)
	}

	code = strings.Replace(validComponent, "module.exports = { nodeClass: Calculator }", "", 1)
	res = New(nil).Validate(code)
	if !hasError(res, "module.exports") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestForbiddenImports(t *testing.T) {
	code := "import { evaluate } from 'mathjs'\n" + validComponent
	res := New(nil).Validate(code)
	if !hasError(res, "forbidden import: mathjs") {
		t.Errorf("errors = %v", res.Errors)
	}

	// A forbidden name mentioned outside an import line is fine.
	code = strings.Replace(validComponent, "'Performs arithmetic'", "'like mathjs but simpler'", 1)
	res = New(nil).Validate(code)
	if hasError(res, "forbidden import") {
		t.Errorf("errors = %v", res.Errors)
	}

	// Custom denylist replaces the default.
	res = New([]string{"leftpad"}).Validate("import x from 'mathjs'\n" + validComponent)
	if hasError(res, "mathjs") {
		t.Errorf("custom denylist should not flag mathjs: %v", res.Errors)
	}
}

func TestUnsafePatterns(t *testing.T) {
	for _, tc := range []struct {
		inject string
		want   string
	}{
		{"const r = eval('1+1')", "eval()"},
		{"const f = new Function('return 1')", "new Function()"},
		{"require('child_process')", "child_process"},
	} {
		code := strings.Replace(validComponent, "return await Promise.resolve(a)",
			tc.inject+"\n            return await Promise.resolve(a)", 1)
		res := New(nil).Validate(code)
		if res.IsValid || !hasError(res, tc.want) {
			t.Errorf("inject %q: errors = %v", tc.inject, res.Errors)
		}
	}
}

func TestTraversalAllowedInImportsOnly(t *testing.T) {
	// The valid component already imports from '../../../src/Interface'.
	res := New(nil).Validate(validComponent)
	if hasError(res, "traversal") {
		t.Fatalf("import-line traversal should pass: %v", res.Errors)
	}

	code := strings.Replace(validComponent, "return await Promise.resolve(a)",
		"const p = '../secrets'\n            return await Promise.resolve(a)", 1)
	res = New(nil).Validate(code)
	if !hasError(res, "traversal") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestStyleWarnings(t *testing.T) {
	code := strings.NewReplacer(
		"try {", "if (true) {",
		"} catch (error) {\n            throw new Error('init failed: ' + error)\n        }", "}",
		"throw new Error('a must be a number')", "return 0",
	).Replace(validComponent)
	res := New(nil).Validate(code)
	if !hasWarning(res, "try/catch") {
		t.Errorf("warnings = %v", res.Warnings)
	}
	if !hasWarning(res, "throwing") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

// Package validator checks generated component code with deterministic
// structure and pattern rules. It is a rule engine, not a compiler front
// end: every check is a regexp or substring test. Failed checks append
// human-readable errors; stylistic concerns append warnings without failing
// validation.
package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	classRe      = regexp.MustCompile(`class\s+(\w+)\s+implements\s+INode`)
	initRe       = regexp.MustCompile(`async\s+init\s*\(\s*nodeData:\s*INodeData[^)]*\)\s*:\s*Promise<[^>]+>`)
	exportRe     = regexp.MustCompile(`module\.exports\s*=\s*\{\s*nodeClass:\s*(\w+)\s*\}`)
	importLineRe = regexp.MustCompile(`(?m)^\s*(?:import\b.*|const\s+\w+\s*=\s*require\(.*)$`)
)

// DefaultForbiddenImports are dependencies the target runtime does not
// support; components importing them always fail validation.
var DefaultForbiddenImports = []string{"mathjs", "moment", "lodash", "jquery", "axios"}

// unsafePatterns are substrings that indicate obviously dangerous code.
var unsafePatterns = []struct {
	needle string
	reason string
}{
	{"eval(", "dynamic evaluation via eval() is not allowed"},
	{"new Function(", "dynamic evaluation via new Function() is not allowed"},
	{"child_process", "spawning processes via child_process is not allowed"},
	{"../", "relative path traversal strings are not allowed outside imports"},
}

// Result is the outcome of validating one component.
type Result struct {
	IsValid       bool     `json:"is_valid"`
	ComponentName string   `json:"component_name,omitempty"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
}

// Validator checks generated component code.
type Validator struct {
	forbidden []string
}

// New creates a Validator with the given forbidden-import denylist; nil
// means DefaultForbiddenImports.
func New(forbidden []string) *Validator {
	if forbidden == nil {
		forbidden = DefaultForbiddenImports
	}
	return &Validator{forbidden: forbidden}
}

// Validate runs every check against the code.
func (v *Validator) Validate(code string) Result {
	res := Result{IsValid: true, Errors: []string{}, Warnings: []string{}}

	v.checkStructure(code, &res)
	v.checkSignatures(code, &res)
	v.checkExport(code, &res)
	v.checkForbiddenImports(code, &res)
	v.checkUnsafePatterns(code, &res)
	v.checkStyle(code, &res)

	if res.IsValid {
		if m := classRe.FindStringSubmatch(code); m != nil {
			res.ComponentName = m[1]
		}
	}
	return res
}

func (v *Validator) checkStructure(code string, res *Result) {
	if !classRe.MatchString(code) {
		res.fail("missing class declaration implementing the INode interface")
		return
	}
	if !strings.Contains(code, "constructor(") {
		res.fail("missing constructor method")
	}

	// baseClasses is load-bearing: the host refuses the component without it.
	if !strings.Contains(code, "this.baseClasses") {
		res.fail("missing critical required property assignment: this.baseClasses")
	}
	for _, prop := range []string{"label", "name", "version", "type", "icon", "category", "description", "inputs"} {
		if !strings.Contains(code, "this."+prop) {
			res.warn("missing required property assignment: this." + prop)
		}
	}

	if open, closed := strings.Count(code, "{"), strings.Count(code, "}"); open != closed {
		res.fail(fmt.Sprintf("unbalanced braces: %d open, %d close", open, closed))
	}
}

func (v *Validator) checkSignatures(code string, res *Result) {
	if !strings.Contains(code, "import {") && !strings.Contains(code, "import(") &&
		!strings.Contains(code, "require(") {
		res.fail("missing import statements")
	}
	if !strings.Contains(code, "INode") || !strings.Contains(code, "INodeData") {
		res.fail("missing required interface imports (INode, INodeData)")
	}
	if !initRe.MatchString(code) {
		res.fail("invalid init method signature: must be async init(nodeData: INodeData, ...): Promise<T>")
	}
}

func (v *Validator) checkExport(code string, res *Result) {
	em := exportRe.FindStringSubmatch(code)
	if em == nil {
		res.fail("missing or invalid module.exports: must be module.exports = { nodeClass: ComponentName }")
		return
	}
	if cm := classRe.FindStringSubmatch(code); cm != nil && cm[1] != em[1] {
		res.fail(fmt.Sprintf("class name %q does not match exported name %q", cm[1], em[1]))
	}
}

func (v *Validator) checkForbiddenImports(code string, res *Result) {
	imports := importLineRe.FindAllString(code, -1)
	for _, lib := range v.forbidden {
		for _, line := range imports {
			if strings.Contains(line, "'"+lib+"'") || strings.Contains(line, `"`+lib+`"`) ||
				strings.Contains(line, "`"+lib+"`") {
				res.fail("forbidden import: " + lib)
				break
			}
		}
	}
}

func (v *Validator) checkUnsafePatterns(code string, res *Result) {
	for _, p := range unsafePatterns {
		if p.needle == "../" {
			// Import specifiers legitimately use relative paths; only flag
			// traversal sequences that appear outside import lines.
			if containsTraversalOutsideImports(code) {
				res.fail(p.reason)
			}
			continue
		}
		if strings.Contains(code, p.needle) {
			res.fail(p.reason)
		}
	}
}

func (v *Validator) checkStyle(code string, res *Result) {
	if strings.Contains(code, "async init(") && !strings.Contains(code, "await") {
		res.warn("async init declared but no await usage found")
	}
	if !strings.Contains(code, "try") || !strings.Contains(code, "catch") {
		res.warn("no error handling found: consider adding try/catch blocks")
	}
	if !strings.Contains(code, "throw") {
		res.warn("no error throwing found: consider validating inputs and throwing meaningful errors")
	}
}

func containsTraversalOutsideImports(code string) bool {
	for _, line := range strings.Split(code, "\n") {
		if !strings.Contains(line, "../") {
			continue
		}
		if importLineRe.MatchString(line) {
			continue
		}
		return true
	}
	return false
}

func (r *Result) fail(msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, msg)
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

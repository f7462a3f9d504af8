package lint

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/bazelbuild/buildtools/build"
	"github.com/bazelbuild/buildtools/warn"

	"github.com/robbyt/go-scriptdesk/diagnostic"
)

// Rule names. The load rules are buildifier warning categories.
const (
	RuleFormat         = "format"
	RuleNaming         = "naming"
	RuleLoadOnTop      = "load-on-top"
	RuleUnusedLoad     = "load"
	RuleSameOriginLoad = "same-origin-load"
)

// localRules are implemented here; every other rule is a buildifier warning.
var localRules = map[string]func(f *build.File, text string) []diagnostic.Diagnostic{
	RuleFormat: checkFormat,
	RuleNaming: checkNaming,
}

// AllRules returns the rules enabled when none are configured.
func AllRules() []string {
	return []string{RuleFormat, RuleLoadOnTop, RuleUnusedLoad, RuleSameOriginLoad, RuleNaming}
}

// knownRule reports whether name is a local rule or a single-file buildifier
// warning. Multi-file warnings need the rest of the repository and are not offered.
func knownRule(name string) bool {
	if _, ok := localRules[name]; ok {
		return true
	}
	if _, ok := warn.FileWarningMap[name]; ok {
		return true
	}
	_, ok := warn.RuleWarningMap[name]
	return ok
}

func selectRules(names []string) []string {
	if len(names) == 0 {
		names = AllRules()
	}
	names = slices.Clone(names)
	slices.Sort(names)
	return slices.Compact(names)
}

// checkWarnings runs the enabled buildifier warnings over f.
func checkWarnings(f *build.File, categories []string) []diagnostic.Diagnostic {
	if len(categories) == 0 {
		return nil
	}

	findings := warn.FileWarnings(f, categories, nil, warn.ModeWarn, nil)
	issues := make([]diagnostic.Diagnostic, 0, len(findings))
	for _, finding := range findings {
		msg, _, _ := strings.Cut(finding.Message, "\n")
		issues = append(issues, diagnostic.NewLintIssue(finding.Category, msg, toPosition(finding.Start)))
	}
	return issues
}

// checkFormat reports one issue per hunk where the text differs from its
// canonical format.
func checkFormat(f *build.File, text string) []diagnostic.Diagnostic {
	formatted := string(build.Format(f))
	if formatted == text {
		return nil
	}

	lines := splitLines(text)
	var issues []diagnostic.Diagnostic
	for _, line := range changedHunks(lines, splitLines(formatted)) {
		if line > len(lines) {
			line = max(len(lines), 1)
		}
		pos := diagnostic.Position{Line: line, Column: 1, Offset: diagnostic.OffsetOf(text, line, 1)}
		issues = append(issues, diagnostic.NewLintIssue(RuleFormat, "Code is not in canonical format", pos))
	}
	return issues
}

var snakeCase = regexp.MustCompile(`^_*[a-z][a-z0-9_]*$`)

// checkNaming reports function names that are not lower_snake_case.
func checkNaming(f *build.File, _ string) []diagnostic.Diagnostic {
	var issues []diagnostic.Diagnostic
	build.Walk(f, func(x build.Expr, _ []build.Expr) {
		def, ok := x.(*build.DefStmt)
		if !ok || snakeCase.MatchString(def.Name) {
			return
		}
		start, _ := def.Span()
		issues = append(issues, diagnostic.NewLintIssue(RuleNaming,
			fmt.Sprintf("Function name %q should be lower_snake_case", def.Name), toPosition(start)))
	})
	return issues
}

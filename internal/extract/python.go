package extract

import (
	"regexp"
	"strings"

	"github.com/genaitools/testgen/pkg/types"
)

// Python patterns. Only column-zero defs are top-level functions.
var (
	pyDef       = regexp.MustCompile(`^(async\s+)?def\s+(\w+)\s*\(([^)]*)\)(?:\s*->\s*([^:]+))?\s*:`)
	pyDecorator = regexp.MustCompile(`^@([\w.]+)`)
	pyDocstring = regexp.MustCompile(`^\s*(?:"""|''')(.*?)(?:"""|''')?\s*$`)
)

// Body patterns that mark a function as a framework handler even without a
// telltale decorator.
var (
	flaskBodyPatterns   = []string{"request.", "session.", "render_template", "redirect", "url_for", "jsonify", "make_response"}
	djangoBodyPatterns  = []string{"HttpResponse", "render", "redirect", "JsonResponse", "request.", "get_object_or_404"}
	fastapiBodyPatterns = []string{"Depends(", "HTTPException", "status_code", "response_model"}

	routeDecorators   = map[string]bool{"route": true, "get": true, "post": true, "put": true, "delete": true, "patch": true}
	fastapiDecorators = map[string]bool{"get": true, "post": true, "put": true, "delete": true, "patch": true, "options": true, "head": true}
)

func extractPython(filePath, content string, framework types.Framework) []types.Function {
	lines := strings.Split(content, "\n")

	var funcs []types.Function
	var pendingDecorators []string

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := pyDecorator.FindStringSubmatch(line); m != nil {
			pendingDecorators = append(pendingDecorators, m[1])
			continue
		}

		m := pyDef.FindStringSubmatch(line)
		if m == nil {
			// Any other column-zero statement breaks the decorator chain
			if strings.TrimSpace(line) != "" && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
				pendingDecorators = nil
			}
			continue
		}

		fn := types.Function{
			Name:       m[2],
			FilePath:   filePath,
			Line:       i + 1,
			Args:       parseArgs(m[3]),
			ReturnType: strings.TrimSpace(m[4]),
			IsAsync:    m[1] != "",
			Decorators: pendingDecorators,
			Framework:  framework,
		}
		pendingDecorators = nil

		end := pythonBodyEnd(lines, i)
		fn.Source = strings.Join(lines[i:end], "\n")
		fn.Docstring = pythonDocstring(lines, i, end)

		if shouldExtractPython(fn, framework) {
			funcs = append(funcs, fn)
		}

		i = end - 1
	}
	return funcs
}

// pythonBodyEnd finds the exclusive end line of a column-zero def by
// scanning for the next non-empty line at column zero.
func pythonBodyEnd(lines []string, start int) int {
	for i := start + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			return i
		}
	}
	return len(lines)
}

// pythonDocstring returns the first line of a docstring immediately after
// the def line, if any.
func pythonDocstring(lines []string, start, end int) string {
	for i := start + 1; i < end; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if m := pyDocstring.FindStringSubmatch(lines[i]); m != nil {
			return strings.TrimSpace(m[1])
		}
		return ""
	}
	return ""
}

func parseArgs(argList string) []string {
	if strings.TrimSpace(argList) == "" {
		return nil
	}
	var args []string
	for _, raw := range strings.Split(argList, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		// Strip type annotation and default value
		if idx := strings.IndexAny(name, ":="); idx != -1 {
			name = strings.TrimSpace(name[:idx])
		}
		if name != "" {
			args = append(args, name)
		}
	}
	return args
}

func shouldExtractPython(fn types.Function, framework types.Framework) bool {
	if strings.HasPrefix(fn.Name, "_") || strings.HasPrefix(fn.Name, "test_") || fn.Name == "main" {
		return false
	}

	switch framework {
	case types.FrameworkFlask:
		return isFlaskEndpoint(fn)
	case types.FrameworkDjango:
		return isDjangoView(fn)
	case types.FrameworkFastAPI:
		return isFastAPIEndpoint(fn)
	default:
		return true
	}
}

func isFlaskEndpoint(fn types.Function) bool {
	for _, dec := range fn.Decorators {
		parts := strings.Split(dec, ".")
		if routeDecorators[parts[len(parts)-1]] {
			return true
		}
	}
	return containsAny(fn.Source, flaskBodyPatterns)
}

func isDjangoView(fn types.Function) bool {
	if len(fn.Args) > 0 && fn.Args[0] == "request" {
		return true
	}
	return containsAny(fn.Source, djangoBodyPatterns)
}

func isFastAPIEndpoint(fn types.Function) bool {
	for _, dec := range fn.Decorators {
		parts := strings.Split(dec, ".")
		if fastapiDecorators[parts[len(parts)-1]] {
			return true
		}
	}
	return containsAny(fn.Source, fastapiBodyPatterns)
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

package extract

import (
	"regexp"
	"strings"

	"github.com/genaitools/testgen/pkg/types"
)

// TypeScript patterns, shared by Angular and plain TypeScript sources.
var (
	tsFunction = regexp.MustCompile(`^(\s*)(export\s+)?(async\s+)?function\s+(\w+)\s*\(([^)]*)\)(?:\s*:\s*([^{]+))?\s*\{`)
	tsArrow    = regexp.MustCompile(`^(\s*)(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(async\s+)?\(([^)]*)\)(?:\s*:\s*[^=]+)?\s*=>`)
	tsMethod   = regexp.MustCompile(`^(\s*)(?:public\s+|private\s+|protected\s+)?(?:static\s+)?(async\s+)?(\w+)\s*\(([^)]*)\)(?:\s*:\s*([^{]+))?\s*\{`)
	tsClass    = regexp.MustCompile(`^(\s*)(?:export\s+)?(?:abstract\s+)?class\s+(\w+)`)
	tsDecLine  = regexp.MustCompile(`^\s*@(\w+)`)
)

var angularClassDecorators = map[string]bool{
	"Component":  true,
	"Injectable": true,
	"Directive":  true,
	"Pipe":       true,
}

// Keywords that the method pattern would otherwise match.
var tsNonMethods = map[string]bool{
	"if":          true,
	"for":         true,
	"while":       true,
	"switch":      true,
	"catch":       true,
	"constructor": true,
	"return":      true,
	"new":         true,
}

func extractTypeScript(filePath, content string, framework types.Framework) []types.Function {
	lines := strings.Split(content, "\n")

	inAngularClass := false
	classDepth := 0
	depth := 0
	pendingAngular := false

	var funcs []types.Function

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := tsDecLine.FindStringSubmatch(line); m != nil && angularClassDecorators[m[1]] {
			pendingAngular = true
		}

		if m := tsClass.FindStringSubmatch(line); m != nil {
			inAngularClass = pendingAngular
			pendingAngular = false
			classDepth = depth
		}

		fn, matched := matchTypeScriptFunction(line, depth, inAngularClass)
		if matched {
			fn.FilePath = filePath
			fn.Line = i + 1
			fn.Framework = framework

			end := braceBlockEnd(lines, i)
			fn.Source = strings.Join(lines[i:end], "\n")

			if shouldExtractTypeScript(fn, framework, inAngularClass) {
				funcs = append(funcs, fn)
			}
			depth += braceDelta(strings.Join(lines[i:end], "\n"))
			i = end - 1
		} else {
			depth += braceDelta(line)
		}

		if inAngularClass && depth <= classDepth && strings.Contains(line, "}") {
			inAngularClass = false
		}
	}
	return funcs
}

func matchTypeScriptFunction(line string, depth int, inClass bool) (types.Function, bool) {
	if m := tsFunction.FindStringSubmatch(line); m != nil && depth == 0 {
		return types.Function{
			Name:       m[4],
			Args:       parseTSParams(m[5]),
			ReturnType: strings.TrimSpace(m[6]),
			IsAsync:    m[3] != "",
		}, true
	}
	if m := tsArrow.FindStringSubmatch(line); m != nil && depth == 0 {
		return types.Function{
			Name:    m[2],
			Args:    parseTSParams(m[4]),
			IsAsync: m[3] != "",
		}, true
	}
	// Method pattern only applies inside a class body
	if inClass && depth >= 1 {
		if m := tsMethod.FindStringSubmatch(line); m != nil && !tsNonMethods[m[3]] {
			return types.Function{
				Name:       m[3],
				Args:       parseTSParams(m[4]),
				ReturnType: strings.TrimSpace(m[5]),
				IsAsync:    m[2] != "",
			}, true
		}
	}
	return types.Function{}, false
}

// braceBlockEnd returns the exclusive end line of a braced block starting
// on line start, by counting braces until balance. A start line without an
// opening brace (expression-bodied arrow) is its own block.
func braceBlockEnd(lines []string, start int) int {
	if !strings.Contains(lines[start], "{") {
		return start + 1
	}
	count := 0
	started := false
	for i := start; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				count++
				started = true
			case '}':
				count--
			}
		}
		if started && count <= 0 {
			return i + 1
		}
	}
	return len(lines)
}

func braceDelta(s string) int {
	return strings.Count(s, "{") - strings.Count(s, "}")
}

func parseTSParams(paramList string) []string {
	if strings.TrimSpace(paramList) == "" {
		return nil
	}
	var params []string
	for _, raw := range strings.Split(paramList, ",") {
		name := strings.TrimSpace(raw)
		if idx := strings.IndexAny(name, ":="); idx != -1 {
			name = strings.TrimSpace(name[:idx])
		}
		name = strings.TrimPrefix(name, "private ")
		name = strings.TrimPrefix(name, "public ")
		name = strings.TrimPrefix(name, "readonly ")
		if name != "" {
			params = append(params, name)
		}
	}
	return params
}

func shouldExtractTypeScript(fn types.Function, framework types.Framework, inAngularClass bool) bool {
	if strings.HasPrefix(fn.Name, "_") || strings.HasPrefix(fn.Name, "test") {
		return false
	}
	if fn.Name == "constructor" {
		return false
	}
	if framework == types.FrameworkAngular {
		// Only methods of decorated classes are worth testing as Angular units
		return inAngularClass
	}
	return true
}

package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/genaitools/testgen/pkg/types"
)

// Placeholder tokens every template may reference.
const (
	PlaceholderFilePath  = "{file_path}"
	PlaceholderFunctions = "{all_functions_code}"
)

// ErrUnsupportedLanguage is returned by Lookup when no template exists for
// the language at all. Callers decide whether to skip the file or abort.
var ErrUnsupportedLanguage = errors.New("unsupported language")

type templateKey struct {
	language  types.Language
	framework types.Framework
}

// Store maps (language, framework) pairs to prompt templates. Immutable
// after construction.
type Store struct {
	templates map[templateKey]string
}

// NewStore builds the template store. All templates are normalized to the
// single-brace placeholder syntax.
func NewStore() *Store {
	raw := map[templateKey]string{
		{types.LangPython, types.FrameworkGeneral}:     pythonGeneralTemplate,
		{types.LangPython, types.FrameworkFlask}:       pythonFlaskTemplate,
		{types.LangPython, types.FrameworkDjango}:      pythonDjangoTemplate,
		{types.LangPython, types.FrameworkFastAPI}:     pythonFastAPITemplate,
		{types.LangTypeScript, types.FrameworkGeneral}: tsGeneralTemplate,
		{types.LangTypeScript, types.FrameworkAngular}: tsAngularTemplate,
	}

	templates := make(map[templateKey]string, len(raw))
	for k, v := range raw {
		templates[k] = NormalizeTemplate(v)
	}

	return &Store{templates: templates}
}

// Lookup resolves the template for a (language, framework) pair. When no
// framework-specific template exists the language's general template is
// returned. A language with no templates at all yields
// ErrUnsupportedLanguage.
func (s *Store) Lookup(language types.Language, framework types.Framework) (string, error) {
	if tmpl, ok := s.templates[templateKey{language, framework}]; ok {
		return tmpl, nil
	}
	if tmpl, ok := s.templates[templateKey{language, types.FrameworkGeneral}]; ok {
		return tmpl, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
}

// NormalizeTemplate rewrites doubled-brace placeholders ({{file_path}}) to
// the canonical single-brace form. The doubled form was an authoring
// inconsistency, not an escaping rule.
func NormalizeTemplate(tmpl string) string {
	tmpl = strings.ReplaceAll(tmpl, "{{file_path}}", PlaceholderFilePath)
	tmpl = strings.ReplaceAll(tmpl, "{{all_functions_code}}", PlaceholderFunctions)
	return tmpl
}

// Build substitutes the placeholders into a template. Every occurrence of
// both placeholders is replaced; a template that omits one is left alone
// for that token. Nothing else in the template is altered.
func Build(tmpl, filePath, functionsCode string) string {
	out := strings.ReplaceAll(tmpl, PlaceholderFilePath, filePath)
	out = strings.ReplaceAll(out, PlaceholderFunctions, functionsCode)
	return out
}

// RenderFunctions formats extracted functions into the block substituted
// for {all_functions_code}: a numbered header per function followed by a
// fenced source listing.
func RenderFunctions(lang types.Language, funcs []types.Function) string {
	fence := "python"
	if lang == types.LangTypeScript {
		fence = "typescript"
	}

	var b strings.Builder
	for i, fn := range funcs {
		fmt.Fprintf(&b, "\n# Function %d: %s\n", i+1, fn.Name)
		if len(fn.Args) > 0 {
			fmt.Fprintf(&b, "# Arguments: %s\n", strings.Join(fn.Args, ", "))
		}
		if fn.Docstring != "" {
			fmt.Fprintf(&b, "# Docstring: %s\n", fn.Docstring)
		}
		fmt.Fprintf(&b, "```%s\n%s\n```\n", fence, fn.Source)
		b.WriteString(strings.Repeat("-", 50) + "\n")
	}
	return b.String()
}

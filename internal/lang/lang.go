// Package lang implements the per-language behavior of the selection
// engine: recognizing source files, extracting raw import specifiers, and
// resolving those specifiers to absolute paths inside the repository.
//
// Languages form a closed set of variants behind one interface. Every
// operation is total: malformed or unreadable input yields empty results,
// never errors, so a single broken file can only under-select.
package lang

import (
	"tsel/internal/errors"
)

// Language identifies a supported dependency language family.
type Language string

const (
	// LangJavaScript covers the module/package family: .js, .jsx, .mjs,
	// .cjs, .ts and .tsx files with import/require/re-export forms.
	LangJavaScript Language = "javascript"
	// LangRust covers the compiled/crate family: .rs files with mod
	// declarations and use trees.
	LangRust Language = "rust"
)

// Support is the three-operation surface each language variant implements.
type Support interface {
	// Name returns the language identifier.
	Name() Language

	// Extensions lists the file extensions this language owns.
	Extensions() []string

	// IsSourceFile reports whether path looks like a source file of this
	// language, by extension.
	IsSourceFile(path string) bool

	// ExtractImports returns the raw import specifiers declared in src,
	// best effort. Unparsable input yields an empty list.
	ExtractImports(path string, src []byte) []string

	// NewResolver returns a resolver whose per-directory state (alias
	// configs, package manifests) is owned by one selection run.
	NewResolver() Resolver
}

// Resolver turns one raw specifier into an absolute file path.
type Resolver interface {
	// Resolve returns the absolute path the specifier refers to and true,
	// or "" and false when the specifier is external, broken, or escapes
	// the repository.
	Resolve(fromFile string, specifier string, repoRoot string) (string, bool)
}

// ForLanguage returns the Support implementation for the named language.
func ForLanguage(name string) (Support, error) {
	switch Language(name) {
	case LangJavaScript:
		return javascriptSupport{}, nil
	case LangRust:
		return rustSupport{}, nil
	default:
		return nil, errors.New(errors.LanguageUnknown, "unsupported dependency language: "+name, nil)
	}
}

package types

import (
	"path/filepath"
	"strings"
)

// Type identifies the script language of an extension.
type Type string

const (
	Starlark Type = "starlark"
	Risor    Type = "risor"

	// Extism is a compiled WebAssembly plugin. It is loaded as an extension
	// but has no source text to edit.
	Extism Type = "extism"
)

// extensions maps a file extension to its script type.
var extensions = map[string]Type{
	".star":     Starlark,
	".starlark": Starlark,
	".bzl":      Starlark,
	".risor":    Risor,
	".rsr":      Risor,
}

// FromFileName returns the script type for a file name, based on its extension.
func FromFileName(name string) (Type, bool) {
	t, ok := extensions[strings.ToLower(filepath.Ext(name))]
	return t, ok
}

// IsScript reports whether the file name has a known script extension.
func IsScript(name string) bool {
	_, ok := FromFileName(name)
	return ok
}

// IsModule reports whether the file name is a compiled WebAssembly module.
func IsModule(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".wasm")
}

// ExtensionType returns the type of any loadable extension file, script or module.
func ExtensionType(name string) (Type, bool) {
	if IsModule(name) {
		return Extism, true
	}
	return FromFileName(name)
}

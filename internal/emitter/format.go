package emitter

import (
	"path/filepath"

	"golang.org/x/tools/imports"
)

type formatter func(src []byte) ([]byte, error)

var formatters = map[string]formatter{
	".go": formatGo,
}

// formatGo runs gofmt and fixes the import block of generated Go files.
func formatGo(src []byte) ([]byte, error) {
	return imports.Process("", src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: false,
	})
}

func formatterFor(path string) formatter {
	return formatters[filepath.Ext(path)]
}

// Package generators holds the built-in template sets, one directory per
// generator key.
package generators

import "embed"

//go:embed react-ts go
var FS embed.FS

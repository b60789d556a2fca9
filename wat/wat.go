package wat

import (
	"github.com/wippyai/wasm-inspect/wat/internal/encoder"
	"github.com/wippyai/wasm-inspect/wat/internal/parser"
	"github.com/wippyai/wasm-inspect/wat/internal/token"
)

// Compile translates text format source into a binary module. Symbolic
// $identifiers are preserved as a "name" custom section so inspection
// of the output shows the original names.
func Compile(source string) ([]byte, error) {
	tokens := token.Tokenize(source)
	p := parser.New(tokens)
	mod, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return encoder.Encode(mod), nil
}

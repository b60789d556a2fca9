package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	wasminspect "github.com/wippyai/wasm-inspect"
)

// loadModule reads a file and wraps it for inspection. Both binary and
// text modules are accepted; unconvertible input is kept as-is and
// surfaces through Validate.
func loadModule(path string) (*wasminspect.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return wasminspect.New(data), nil
}

// parseRange parses a "start:end" byte range. Either bound may be
// omitted to mean the corresponding end of the module, and both accept
// 0x prefixes.
func parseRange(s string, full wasminspect.Range) (wasminspect.Range, error) {
	r := full
	if s == "" {
		return r, nil
	}
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return r, fmt.Errorf("range %q: expected start:end", s)
	}
	if lo != "" {
		v, err := strconv.ParseInt(lo, 0, 64)
		if err != nil {
			return r, fmt.Errorf("range start %q: %w", lo, err)
		}
		r.Start = int(v)
	}
	if hi != "" {
		v, err := strconv.ParseInt(hi, 0, 64)
		if err != nil {
			return r, fmt.Errorf("range end %q: %w", hi, err)
		}
		r.End = int(v)
	}
	if r.Start < 0 || r.End < r.Start {
		return r, fmt.Errorf("range %q: bounds out of order", s)
	}
	return r, nil
}

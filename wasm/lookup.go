package wasm

import "sync"

var (
	reverseOnce  sync.Once
	opcodeByName map[string]byte
	miscByName   map[string]uint32
)

func buildReverse() {
	opcodeByName = make(map[string]byte, 256)
	for op := 0; op < 256; op++ {
		name := opcodeNames[op]
		if name == "" {
			continue
		}
		// 0x1C shares the "select" mnemonic; the plain form wins and the
		// typed form is chosen by the assembler when an annotation follows.
		if _, taken := opcodeByName[name]; !taken {
			opcodeByName[name] = byte(op)
		}
	}
	miscByName = make(map[string]uint32, len(miscNames))
	for sub, name := range miscNames {
		miscByName[name] = sub
	}
}

// OpcodeByName returns the single-byte opcode for a text format mnemonic.
func OpcodeByName(name string) (byte, bool) {
	reverseOnce.Do(buildReverse)
	op, ok := opcodeByName[name]
	return op, ok
}

// MiscOpByName returns the 0xFC subopcode for a text format mnemonic.
func MiscOpByName(name string) (uint32, bool) {
	reverseOnce.Do(buildReverse)
	sub, ok := miscByName[name]
	return sub, ok
}

// NaturalAlign returns the natural alignment exponent for a memory access
// opcode, or false if the opcode takes no memarg.
func NaturalAlign(op byte) (uint32, bool) {
	align, ok := naturalAlign[op]
	return align, ok
}

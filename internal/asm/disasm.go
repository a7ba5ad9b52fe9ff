package asm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"stackvm/internal/instr"
)

// Disassemble renders bytecode back into one mnemonic line per
// instruction, each prefixed with its byte offset, so jump/call targets
// read from the stack can be cross-referenced by hand against the
// listing. It stops at the first decode error (including a clean
// ErrEndOfInstructions) and reports everything decoded up to that point.
func Disassemble(code []byte) (string, error) {
	r := bytes.NewReader(code)
	var out strings.Builder

	for {
		offset := len(code) - r.Len()
		ins, err := instr.Decode(r)
		if err != nil {
			if errors.Is(err, instr.ErrEndOfInstructions) {
				return out.String(), nil
			}
			return out.String(), err
		}
		fmt.Fprintf(&out, "%08x  %s\n", offset, ins.String())
	}
}

// DisassembleReader is the streaming counterpart to Disassemble, for
// instruction sources too large to hold fully in memory.
func DisassembleReader(r io.ReadSeeker, w io.Writer) error {
	for {
		offset, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		ins, err := instr.Decode(r)
		if err != nil {
			if errors.Is(err, instr.ErrEndOfInstructions) {
				return nil
			}
			return err
		}
		if _, err := fmt.Fprintf(w, "%08x  %s\n", offset, ins.String()); err != nil {
			return err
		}
	}
}

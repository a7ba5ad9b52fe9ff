// Package asm is the external assembly collaborator spec.md calls out as
// out of scope for the core machine (§6 "no CLI or environment variables
// are part of the core"): a small textual mnemonic form that assembles to
// the machine's flat bytecode, and disassembles back. It plays the role
// the reference implementation's main.rs played informally (building
// programs inline to smoke-test the machine) as a real, reusable tool.
//
// Source syntax, one instruction per line:
//
//	; a comment
//	label:
//	PSH_8 42
//	PSH_8 0x2a
//	PSH_4 3.5
//	PSH_8 label
//	ADD_8
//
// Only PSH_1/2/4/8 take an operand (an integer literal, a float literal,
// or a label reference resolved to that label's byte offset); every other
// mnemonic stands alone, since every other operand in the instruction set
// travels on the compute stack rather than in the bytecode.
package asm

import (
	"bufio"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"stackvm/internal/instr"
)

var commentPattern = regexp.MustCompile(`;.*$|#.*$`)

// UnknownMnemonicError reports a source line whose opcode name does not
// match any entry in the instruction table.
type UnknownMnemonicError struct {
	Line int
	Name string
}

func (e UnknownMnemonicError) Error() string {
	return fmt.Sprintf("asm: line %d: unknown mnemonic %q", e.Line, e.Name)
}

// UndefinedLabelError reports an operand that names a label never defined
// in the source.
type UndefinedLabelError struct {
	Line  int
	Label string
}

func (e UndefinedLabelError) Error() string {
	return fmt.Sprintf("asm: line %d: undefined label %q", e.Line, e.Label)
}

// OperandError reports a malformed or missing PSH operand, or a stray
// operand on an instruction that doesn't take one.
type OperandError struct {
	Line int
	Msg  string
}

func (e OperandError) Error() string {
	return fmt.Sprintf("asm: line %d: %s", e.Line, e.Msg)
}

type sourceLine struct {
	lineNo int
	mnem   string
	arg    string
}

// Assemble compiles source into the machine's flat bytecode. It runs two
// passes: the first walks every instruction to learn each label's byte
// offset (instruction lengths vary, so offsets can't be known line by
// line without first seeing every PSH's width), the second resolves
// operands and emits bytes.
func Assemble(source string) ([]byte, error) {
	lines, labels, err := scan(source)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(lines)*2)
	for _, ln := range lines {
		op, ok := instr.Lookup(ln.mnem)
		if !ok {
			return nil, UnknownMnemonicError{Line: ln.lineNo, Name: ln.mnem}
		}

		width := op.ImmediateLen()
		if width == 0 {
			if ln.arg != "" {
				return nil, OperandError{Line: ln.lineNo, Msg: fmt.Sprintf("%s takes no operand", ln.mnem)}
			}
			out = append(out, byte(op))
			continue
		}

		if ln.arg == "" {
			return nil, OperandError{Line: ln.lineNo, Msg: fmt.Sprintf("%s requires an operand", ln.mnem)}
		}
		payload, err := encodeOperand(ln, width, labels)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(op))
		out = append(out, payload...)
	}
	return out, nil
}

// scan strips comments and blank lines, resolves label declarations to
// byte offsets, and returns the remaining instruction lines in order.
func scan(source string) ([]sourceLine, map[string]uint64, error) {
	var lines []sourceLine
	labels := make(map[string]uint64)

	var offset uint64
	lineNo := 0
	scanner := bufio.NewScanner(strings.NewReader(source))
	for scanner.Scan() {
		lineNo++
		raw := commentPattern.ReplaceAllString(scanner.Text(), "")
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if strings.HasSuffix(raw, ":") {
			labels[strings.TrimSuffix(raw, ":")] = offset
			continue
		}

		fields := strings.SplitN(raw, " ", 2)
		mnem := fields[0]
		arg := ""
		if len(fields) == 2 {
			arg = strings.TrimSpace(fields[1])
		}

		op, ok := instr.Lookup(mnem)
		if !ok {
			return nil, nil, UnknownMnemonicError{Line: lineNo, Name: mnem}
		}
		lines = append(lines, sourceLine{lineNo: lineNo, mnem: mnem, arg: arg})
		offset += 1 + uint64(op.ImmediateLen())
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return lines, labels, nil
}

// encodeOperand resolves ln.arg to width little-endian bytes: a label
// reference, a float literal (for width 4 or 8), or an integer literal
// (decimal, 0x-prefixed hex, or a leading '-').
func encodeOperand(ln sourceLine, width int, labels map[string]uint64) ([]byte, error) {
	if addr, ok := labels[ln.arg]; ok {
		return leUint(addr, width), nil
	}

	if strings.ContainsAny(ln.arg, ".eE") && !strings.HasPrefix(ln.arg, "0x") {
		f, err := strconv.ParseFloat(ln.arg, 64)
		if err != nil {
			return nil, OperandError{Line: ln.lineNo, Msg: err.Error()}
		}
		switch width {
		case 4:
			return leUint(uint64(math.Float32bits(float32(f))), 4), nil
		case 8:
			return leUint(math.Float64bits(f), 8), nil
		default:
			return nil, OperandError{Line: ln.lineNo, Msg: "float literal requires a 4- or 8-byte push"}
		}
	}

	if strings.HasPrefix(ln.arg, "-") {
		v, err := strconv.ParseInt(ln.arg, 0, 64)
		if err != nil {
			return nil, OperandError{Line: ln.lineNo, Msg: err.Error()}
		}
		return leUint(uint64(v), width), nil
	}

	v, err := strconv.ParseUint(ln.arg, 0, 64)
	if err != nil {
		return nil, UndefinedLabelError{Line: ln.lineNo, Label: ln.arg}
	}
	return leUint(v, width), nil
}

func leUint(v uint64, width int) []byte {
	b := make([]byte, width)
	for i := 0; i < width; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// Command stackvm assembles, runs, and disassembles programs for the
// stack machine: a small CLI wrapping internal/asm and internal/machine,
// playing the role the reference implementation's main.rs played
// informally when it built and ran a program inline.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stackvm/internal/asm"
	"stackvm/internal/debugtui"
	"stackvm/internal/instr"
	"stackvm/internal/machine"
	"stackvm/internal/stack"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stackvm",
		Short: "Assemble, run, and disassemble programs for the stack machine",
	}

	root.AddCommand(newRunCmd(), newDebugCmd(), newDisasmCmd(), newAsmCmd())
	return root
}

func newAsmCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "asm <source.asm>",
		Short: "Assemble a source file into flat bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			code, err := asm.Assemble(string(src))
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".bin"
			}
			return os.WriteFile(output, code, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output bytecode path (default: <source>.bin)")
	return cmd
}

func newRunCmd() *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Run an assembled or raw bytecode program to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(args[0])
			if err != nil {
				return err
			}
			if trace {
				m.Trace = true
				m.Tracef = func(i instr.Instruction) {
					fmt.Fprintln(os.Stderr, i.String())
				}
			}
			if err := m.Run(); err != nil {
				return fmt.Errorf("stackvm: %w", err)
			}
			fmt.Printf("stack bytes remaining: %d\n", m.Stack.Size())
			return nil
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print every decoded instruction before it executes")
	return cmd
}

func newDebugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug <program>",
		Short: "Step through a program with an interactive TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(args[0])
			if err != nil {
				return err
			}
			_, err = debugtui.New(m).Run()
			return err
		},
	}
	return cmd
}

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <program>",
		Short: "Disassemble a bytecode program to mnemonic listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := loadBytecode(args[0])
			if err != nil {
				return err
			}
			out, err := asm.Disassemble(code)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	return cmd
}

// loadBytecode reads a program file, assembling it first if it looks
// like source text (anything not ending in .bin is treated as asm
// source, matching the convention the asm subcommand writes).
func loadBytecode(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(path) >= 4 && path[len(path)-4:] == ".bin" {
		return raw, nil
	}
	return asm.Assemble(string(raw))
}

func loadMachine(path string) (*machine.Machine, error) {
	code, err := loadBytecode(path)
	if err != nil {
		return nil, err
	}
	return machine.New(bytes.NewReader(code), stack.New()), nil
}

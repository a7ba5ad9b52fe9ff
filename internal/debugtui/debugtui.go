// Package debugtui is an interactive bubbletea/lipgloss front end for
// stepping a machine.Machine one instruction at a time, inspecting its
// stack and heap between steps, and setting line breakpoints by stream
// offset.
package debugtui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"stackvm/internal/instr"
	"stackvm/internal/machine"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type model struct {
	m *machine.Machine

	breakpoints map[uint64]struct{}
	running     bool

	lastInstr *instr.Instruction
	lastErr   error
	done      bool

	input strings.Builder
}

// New returns a bubbletea program wired to m. Run blocks until the user
// quits ("q") or the machine terminates.
func New(m *machine.Machine) *tea.Program {
	return tea.NewProgram(model{m: m, breakpoints: make(map[uint64]struct{})})
}

func (mo model) Init() tea.Cmd { return nil }

func (mo model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return mo, nil
	}

	switch keyMsg.Type {
	case tea.KeyEnter:
		line := strings.TrimSpace(mo.input.String())
		mo.input.Reset()
		mo = mo.handleCommand(line)
		if mo.done {
			return mo, tea.Quit
		}
		return mo, nil
	case tea.KeyBackspace:
		s := mo.input.String()
		if len(s) > 0 {
			mo.input.Reset()
			mo.input.WriteString(s[:len(s)-1])
		}
		return mo, nil
	case tea.KeyCtrlC, tea.KeyEsc:
		mo.done = true
		return mo, tea.Quit
	case tea.KeyRunes:
		mo.input.WriteString(keyMsg.String())
		return mo, nil
	}
	return mo, nil
}

// handleCommand mirrors the teacher's "n/next", "r/run", "b <offset>"
// command set, plus a "q" to quit.
func (mo model) handleCommand(line string) model {
	switch {
	case line == "q" || line == "quit":
		mo.done = true
	case line == "n" || line == "next" || line == "":
		mo.step()
	case line == "r" || line == "run":
		mo.running = true
		for !mo.done {
			pos, err := mo.streamOffset()
			if err == nil {
				if _, isBreak := mo.breakpoints[pos]; isBreak {
					break
				}
			}
			if !mo.step() {
				break
			}
		}
		mo.running = false
	case strings.HasPrefix(line, "b "):
		arg := strings.TrimSpace(strings.TrimPrefix(line, "b "))
		if off, err := strconv.ParseUint(arg, 0, 64); err == nil {
			if _, ok := mo.breakpoints[off]; ok {
				delete(mo.breakpoints, off)
			} else {
				mo.breakpoints[off] = struct{}{}
			}
		}
	}
	return mo
}

// step executes exactly one instruction, reporting whether stepping may
// continue (false on normal termination or a fatal error).
func (mo *model) step() bool {
	err := mo.m.Step()
	if err == nil {
		return true
	}
	if errors.Is(err, instr.ErrEndOfInstructions) {
		mo.done = true
		return false
	}
	mo.lastErr = err
	var stepErr *machine.StepError
	if errors.As(err, &stepErr) {
		mo.lastInstr = stepErr.Instruction
	}
	mo.done = true
	return false
}

func (mo model) streamOffset() (uint64, error) {
	pos, err := mo.m.Instructions.Seek(0, io.SeekCurrent)
	return uint64(pos), err
}

func (mo model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("stackvm debugger"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "stack bytes: %d\n", mo.m.Stack.Size())

	if mo.lastInstr != nil {
		fmt.Fprintf(&b, "last instruction: %s\n", mo.lastInstr.String())
	}
	if len(mo.breakpoints) > 0 {
		offsets := make([]string, 0, len(mo.breakpoints))
		for off := range mo.breakpoints {
			offsets = append(offsets, fmt.Sprintf("0x%x", off))
		}
		b.WriteString(dimStyle.Render("breakpoints: " + strings.Join(offsets, ", ")))
		b.WriteString("\n")
	}
	if mo.lastErr != nil {
		b.WriteString(errorStyle.Render(mo.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\nheap:\n")
	b.WriteString(spew.Sdump(mo.m.Heap))

	b.WriteString("\n(n)ext, (r)un, (b)reak <offset>, (q)uit > ")
	b.WriteString(mo.input.String())
	return b.String()
}

package picker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Sentinel errors for account selection.
var (
	// ErrNoChoices is returned when there is nothing to pick from.
	ErrNoChoices = errors.New("picker: no accounts to choose from")

	// ErrCancelled is returned when the operator quits or input ends
	// before a choice is made.
	ErrCancelled = errors.New("picker: selection cancelled")
)

// Select returns the index of the chosen name. It uses the interactive
// list when in is a terminal and the line prompt otherwise.
func Select(names []string, in io.Reader, out io.Writer) (int, error) {
	if len(names) == 0 {
		return -1, ErrNoChoices
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runList(names, f, out)
	}
	return Prompt(names, in, out)
}

// Prompt prints a numbered list and reads lines from in until one is a
// number between 1 and len(names). It returns the zero-based index.
func Prompt(names []string, in io.Reader, out io.Writer) (int, error) {
	if len(names) == 0 {
		return -1, ErrNoChoices
	}

	fmt.Fprintln(out, "可用账户:")
	for i, name := range names {
		fmt.Fprintf(out, "  %d. %s\n", i+1, name)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "请选择账户 [1-%d]: ", len(names))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return -1, fmt.Errorf("reading selection: %w", err)
			}
			return -1, ErrCancelled
		}

		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || n < 1 || n > len(names) {
			fmt.Fprintf(out, "输入无效,请输入 1 到 %d 之间的数字\n", len(names))
			continue
		}
		return n - 1, nil
	}
}

func runList(names []string, in io.Reader, out io.Writer) (int, error) {
	final, err := tea.NewProgram(newModel(names), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return -1, fmt.Errorf("running account picker: %w", err)
	}
	m, ok := final.(model)
	if !ok || m.chosen < 0 {
		return -1, ErrCancelled
	}
	return m.chosen, nil
}

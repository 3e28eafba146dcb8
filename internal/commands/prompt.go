package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/cleared-dev/acctree/internal/pruner"
)

// newConfirmer returns an interactive huh prompt on a terminal and a plain
// line reader otherwise, so answers can be piped in.
func newConfirmer(in io.Reader, out io.Writer) pruner.Confirmer {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return huhConfirmer{}
	}
	return &lineConfirmer{in: bufio.NewReader(in), out: out}
}

type huhConfirmer struct{}

func (huhConfirmer) Confirm(prompt string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

type lineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// Confirm accepts yes, y, sim and s (any case). End of input is a no.
func (c *lineConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	fmt.Fprintln(c.out)

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes", "y", "sim", "s":
		return true, nil
	default:
		return false, nil
	}
}

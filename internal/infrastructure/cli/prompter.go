package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return true
}

// Confirm shows the policy warning and asks whether to publish anyway.
func (p *Prompter) Confirm(verdict domain.PolicyVerdict, caption string) (bool, error) {
	fmt.Fprintf(p.out, "\nContent policy flagged this caption (%s):\n", verdict.Action)
	for _, reason := range verdict.Reasons {
		fmt.Fprintf(p.out, " - %s\n", reason)
	}
	fmt.Fprintf(p.out, "Caption:\n  %s\n", caption)

	fmt.Fprint(p.out, "Publish anyway? [y/N]: ")
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)

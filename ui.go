package filemerge

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Choice is one answer a prompt offers the user; Key is what a typed
// response must match (case-insensitively, by prefix), Label is shown in
// the generated question suffix, e.g. "(l)ocal, (o)ther".
type Choice struct {
	Key   string
	Label string
}

// UI is the configuration/UI facade the core consumes for prompts and
// diagnostic output. Strategy code never writes directly to a terminal.
type UI interface {
	Warn(format string, args ...interface{})
	Status(format string, args ...interface{})
	Debug(format string, args ...interface{})
	// Prompt asks question and offers choices, returning the chosen key.
	// Returns ErrUserDeclined if no usable input was given.
	Prompt(question string, choices []Choice, def string) (string, error)
	GUIAvailable() bool
}

// ConsoleUI is the default UI, modeled on go-git's plain stderr status
// lines but with color.v1-style colorized warnings and failures.
type ConsoleUI struct {
	Out    io.Writer
	ErrOut io.Writer
	In     *bufio.Reader
	Debugf bool
	GUI    bool
}

// NewConsoleUI builds a ConsoleUI over the given streams. in may be nil if
// the embedder never expects interactive prompts (e.g. batch merges).
func NewConsoleUI(out, errOut io.Writer, in io.Reader) *ConsoleUI {
	var r *bufio.Reader
	if in != nil {
		r = bufio.NewReader(in)
	}

	return &ConsoleUI{Out: out, ErrOut: errOut, In: r}
}

func (u *ConsoleUI) Warn(format string, args ...interface{}) {
	warn := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintln(u.ErrOut, warn("warning: "+fmt.Sprintf(format, args...)))
}

func (u *ConsoleUI) Status(format string, args ...interface{}) {
	fmt.Fprintln(u.Out, fmt.Sprintf(format, args...))
}

func (u *ConsoleUI) Debug(format string, args ...interface{}) {
	if !u.Debugf {
		return
	}

	fmt.Fprintln(u.Out, "debug: "+fmt.Sprintf(format, args...))
}

func (u *ConsoleUI) GUIAvailable() bool { return u.GUI }

// Prompt renders question with the choices appended, reads one line, and
// matches it case-insensitively against a choice key or a prefix of it.
// An empty line picks def; EOF or no match is a decline.
func (u *ConsoleUI) Prompt(question string, choices []Choice, def string) (string, error) {
	if u.In == nil {
		return "", ErrUserDeclined
	}

	fail := color.New(color.FgRed).SprintFunc()

	fmt.Fprint(u.Out, question+" "+choiceSuffix(choices, def)+" ")

	line, err := u.In.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(u.ErrOut, fail("no response, treating as unresolved"))
		return "", ErrUserDeclined
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		answer = def
	}

	for _, c := range choices {
		if strings.EqualFold(c.Key, answer) || strings.HasPrefix(strings.ToLower(c.Key), answer) {
			return c.Key, nil
		}
	}

	return "", ErrUserDeclined
}

func choiceSuffix(choices []Choice, def string) string {
	parts := make([]string, 0, len(choices))
	for _, c := range choices {
		label := c.Label
		if c.Key == def {
			label = strings.ToUpper(label[:1]) + label[1:]
		}
		parts = append(parts, label)
	}

	return "[" + strings.Join(parts, "/") + "]"
}

// DiffSummary renders a short diff between a and b as space-separated
// "+inserted"/"-deleted" fragments. Nothing in the merge core calls it; it
// is exported for embedders' own debug output.
func DiffSummary(a, b []byte) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(a), string(b), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sb.WriteString("+" + strings.TrimRight(d.Text, "\n") + " ")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("-" + strings.TrimRight(d.Text, "\n") + " ")
		}
	}

	return strings.TrimSpace(sb.String())
}

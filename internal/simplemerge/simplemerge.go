// Package simplemerge wraps the line-oriented three-way text merge
// primitive the core consumes as a library rather than implements: it
// never contains merge-algorithm internals of its own beyond the trivial
// local-pick/other-pick/union modes, which require no diffing at all.
package simplemerge

import (
	"bytes"
	"io"

	"github.com/epiclabs-io/diff3"
)

// Mode selects which of the four simple-merge strategies to run.
type Mode int

const (
	Merge Mode = iota
	Union
	LocalPick
	OtherPick
)

// Result is the outcome of one simple-merge invocation.
type Result struct {
	Output []byte
	// Status is 0 on a clean merge, non-zero when conflict markers were
	// written into Output.
	Status int
}

// Run invokes the requested merge mode over local/ancestor/other. style
// requests diff3-style output (ancestor content shown between the two
// conflict halves), used by the merge3 internal strategy.
func Run(local, ancestor, other []byte, labels []string, mode Mode, style bool) (*Result, error) {
	switch mode {
	case LocalPick:
		return &Result{Output: local, Status: 0}, nil
	case OtherPick:
		return &Result{Output: other, Status: 0}, nil
	case Union:
		out := make([]byte, 0, len(local)+len(other))
		out = append(out, local...)
		out = append(out, other...)

		return &Result{Output: out, Status: 0}, nil
	default:
		return runDiff3(local, ancestor, other, labels, style)
	}
}

func runDiff3(local, ancestor, other []byte, labels []string, style bool) (*Result, error) {
	var aLabel, bLabel string
	if len(labels) > 0 {
		aLabel = labels[0]
	}
	if len(labels) > 1 {
		bLabel = labels[1]
	}

	res, err := diff3.Merge(
		bytes.NewReader(local),
		bytes.NewReader(ancestor),
		bytes.NewReader(other),
		style, aLabel, bLabel,
	)
	if err != nil {
		return nil, err
	}

	out, err := io.ReadAll(res.Result)
	if err != nil {
		return nil, err
	}

	status := 0
	if res.Conflicts {
		status = 1
	}

	return &Result{Output: out, Status: status}, nil
}

package filemerge

import (
	"bytes"
	"regexp"
)

// conflictMarkerRegexp matches any of the three diff3-style conflict
// marker lines. Multiline so ^/$ anchor to line boundaries within the
// file rather than the whole buffer.
var conflictMarkerRegexp = regexp.MustCompile(`(?m)^(<<<<<<< .*|=======|>>>>>>> .*)$`)

// PostCheck runs the optional conflict-marker scan, unchanged-output
// detection, and EOL normalization after a completed full-merge or
// merge-only strategy.
type PostCheck struct {
	UI UI
}

// Run takes the strategy's raw status and returns the possibly-adjusted
// status.
func (p *PostCheck) Run(req *MergeRequest, tool *ToolDescriptor, status int, binary bool, backup *Backup) (int, error) {
	sec := tool.Section
	checks := map[string]bool{}
	checkConflicts := false
	checkChanged := false
	fixEOL := false

	if sec != nil {
		for _, c := range sec.Check {
			checks[c] = true
		}
		checkConflicts = sec.CheckConflicts || checks["conflicts"]
		checkChanged = sec.CheckChanged
		fixEOL = sec.FixEOL
	}

	prompted := false

	if checkConflicts {
		data, err := readFileContent(req.WorkingContext.Filesystem(), req.Local.Path())
		if err == nil && conflictMarkerRegexp.Match(data) {
			status = 1
		}
	}

	if checks["prompt"] {
		choice, err := p.UI.Prompt(
			"was merge of '"+req.Local.Path()+"' successful?",
			[]Choice{{Key: "yes", Label: "(y)es"}, {Key: "no", Label: "(n)o"}}, "yes")
		prompted = true

		if err != nil || choice == "no" {
			status = 1
		}
	} else if status == 0 && checkChanged && !prompted && backup != nil {
		data, err := readFileContent(req.WorkingContext.Filesystem(), req.Local.Path())
		if err == nil && bytes.Equal(data, backup.Content) {
			choice, perr := p.UI.Prompt(
				"output file appears unchanged, was merge successful?",
				[]Choice{{Key: "yes", Label: "(y)es"}, {Key: "no", Label: "(n)o"}}, "yes")

			if perr != nil || choice == "no" {
				status = 1
			}
		}
	}

	if fixEOL && !binary && backup != nil {
		if err := p.fixEOL(req, backup); err != nil {
			return status, err
		}
	}

	return status, nil
}

// fixEOL rewrites the destination's line endings to match backup's
// dominant style (\r\n, \r, or \n).
func (p *PostCheck) fixEOL(req *MergeRequest, backup *Backup) error {
	fs := req.WorkingContext.Filesystem()

	data, err := readFileContent(fs, req.Local.Path())
	if err != nil {
		return err
	}

	style := dominantEOL(backup.Content)
	normalized := toEOLStyle(normalizeToLF(data), style)

	return writeFileContent(fs, req.Local.Path(), normalized)
}

func dominantEOL(data []byte) string {
	crlf := bytes.Count(data, []byte("\r\n"))
	lfOnly := bytes.Count(data, []byte("\n")) - crlf
	crOnly := bytes.Count(data, []byte("\r")) - crlf

	switch {
	case crlf >= lfOnly && crlf >= crOnly && crlf > 0:
		return "\r\n"
	case crOnly > lfOnly:
		return "\r"
	default:
		return "\n"
	}
}

func normalizeToLF(data []byte) []byte {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
	return data
}

func toEOLStyle(data []byte, style string) []byte {
	if style == "\n" {
		return data
	}

	return bytes.ReplaceAll(data, []byte("\n"), []byte(style))
}

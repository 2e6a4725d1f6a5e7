package filemerge

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anmitsu/go-shlex"
)

// ExternalDriver substitutes $local/$base/$other/$output into a
// configured command line, executes it with a defined environment, and
// cleans up its temp files.
type ExternalDriver struct {
	UI        UI
	TempFiles TempFileProducer
}

// Run refuses entirely when req.WorkingContext is in-memory. Otherwise it
// writes the other/ancestor temp files, substitutes the tool's arg
// template, execs it, and returns its exit code as the merge status.
func (d *ExternalDriver) Run(req *MergeRequest, tool *ToolDescriptor, execPath string, backup *Backup) (status int, err error) {
	if req.WorkingContext.IsInMemory() {
		return 0, &InMemoryConflictError{
			Paths:  []string{req.Local.Path()},
			Reason: "external merge tools require an on-disk working context",
		}
	}

	basePath, otherPath, err := d.TempFiles.MakeTempPair(req.OriginalPath, req.Ancestor, req.Other)
	if err != nil {
		return 0, err
	}
	defer d.TempFiles.Cleanup(basePath, otherPath)

	localPath := req.Local.Path()
	outputPath := req.Local.Path()

	hasOutput := strings.Contains(tool.ArgTemplate, "$output")
	if hasOutput && backup != nil {
		localPath = backup.PhysicalPath
	}

	subs := map[string]string{
		"local":  localPath,
		"base":   basePath,
		"other":  otherPath,
		"output": outputPath,
	}

	args, err := shlex.Split(tool.ArgTemplate, true)
	if err != nil {
		return 0, fmt.Errorf("filemerge: parsing args for tool %s: %w", tool.Name, err)
	}

	for i, a := range args {
		args[i] = substituteVars(a, subs)
	}

	if tool.Section != nil && tool.Section.GUI {
		d.UI.Status("running merge tool %s for file %s", tool.Name, req.Local.Path())
	}

	cmd := exec.Command(execPath, args...)
	cmd.Dir = req.WorkingContext.Root()
	cmd.Env = append(os.Environ(), externalToolEnv(req)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	runErr := cmd.Run()
	if runErr == nil {
		return 0, nil
	}

	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}

	return 0, runErr
}

func substituteVars(token string, subs map[string]string) string {
	r := strings.NewReplacer(
		"$local", subs["local"],
		"$base", subs["base"],
		"$other", subs["other"],
		"$output", subs["output"],
	)

	return r.Replace(token)
}

func externalToolEnv(req *MergeRequest) []string {
	isLink := func(flags string) string {
		if strings.Contains(flags, "l") {
			return "1"
		}
		return "0"
	}

	otherNode := ""
	if ctx := req.Other.ChangeContext(); ctx != nil {
		otherNode = ctx.NodeID()
	}

	baseNode := ""
	if ctx := req.Ancestor.ChangeContext(); ctx != nil {
		baseNode = ctx.String()
	}

	return []string{
		"HG_FILE=" + req.Local.Path(),
		"HG_MY_NODE=" + req.MyNode,
		"HG_OTHER_NODE=" + otherNode,
		"HG_BASE_NODE=" + baseNode,
		"HG_MY_ISLINK=" + isLink(req.Local.Flags()),
		"HG_OTHER_ISLINK=" + isLink(req.Other.Flags()),
		"HG_BASE_ISLINK=" + isLink(req.Ancestor.Flags()),
	}
}

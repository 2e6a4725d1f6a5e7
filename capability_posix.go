//go:build !windows

package filemerge

import (
	"os/exec"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// findExternalTool resolves an external tool's executable via the
// executable config value (expanding a leading ~) and PATH lookup; there
// is no registry on POSIX platforms.
func findExternalTool(desc *ToolDescriptor) (string, bool) {
	sec := desc.Section
	if sec == nil {
		return "", false
	}

	exe := sec.Executable
	if exe == "" {
		exe = desc.Name
	}

	if strings.HasPrefix(exe, "~") {
		expanded, err := homedir.Expand(exe)
		if err == nil {
			exe = expanded
		}
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		return "", false
	}

	return path, true
}

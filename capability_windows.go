//go:build windows

package filemerge

import (
	"os/exec"

	"golang.org/x/sys/windows/registry"
)

// findExternalTool resolves an external tool's executable, probing the
// Windows registry keys before falling back to the executable config value
// and PATH, matching findexternaltool's regkey/regkeyalt/executable order.
func findExternalTool(desc *ToolDescriptor) (string, bool) {
	sec := desc.Section
	if sec == nil {
		return "", false
	}

	if sec.RegKey != "" {
		if path, ok := probeRegistry(sec.RegKey, sec.RegName); ok {
			return path, true
		}
	}

	if sec.RegKeyAlt != "" {
		if path, ok := probeRegistry(sec.RegKeyAlt, sec.RegName); ok {
			return path, true
		}
	}

	exe := sec.Executable
	if exe == "" {
		exe = desc.Name
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		return "", false
	}

	return path, true
}

func probeRegistry(key, name string) (string, bool) {
	if name == "" {
		name = ""
	}

	k, err := registry.OpenKey(registry.LOCAL_MACHINE, key, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer k.Close()

	val, _, err := k.GetStringValue(name)
	if err != nil {
		return "", false
	}

	return val, true
}

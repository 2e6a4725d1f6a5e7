package filemerge

// CapabilityFilter rejects candidate tools that cannot handle the
// symlink/binary/change-delete/GUI constraints of the file at hand.
type CapabilityFilter struct {
	UI UI
}

// Check reports whether desc may be used for this file. explicit marks a
// tool named by a merge-patterns entry rather than one discovered via the
// priority pool; it governs whether rejection is a warning or a quiet
// debug note. The resolved executable path is returned
// for external tools so the caller need not probe twice.
func (f *CapabilityFilter) Check(desc *ToolDescriptor, symlink, binary, changeDelete, explicit bool) (ok bool, resolvedPath string) {
	note := f.UI.Debug
	if explicit {
		note = f.UI.Warn
	}

	if desc == nil {
		return false, ""
	}

	if desc.Disabled {
		note("merge tool %s is disabled", desc.Name)
		return false, ""
	}

	if desc.Kind == ToolExternal {
		path, found := findExternalTool(desc)
		if !found {
			note("couldn't find merge tool %s", desc.Name)
			return false, ""
		}

		resolvedPath = path
	}

	if symlink && !desc.HandlesSymlink {
		note("tool %s can't handle symlinks", desc.Name)
		return false, ""
	}

	if binary && !desc.HandlesBinary {
		note("tool %s can't handle binary", desc.Name)
		return false, ""
	}

	if changeDelete && !(desc.Kind == ToolInternal && desc.MergeType == NoMerge && desc.HandlesChangeDelete) {
		note("tool %s can't handle change/delete conflicts", desc.Name)
		return false, ""
	}

	if desc.RequiresGUI && !f.UI.GUIAvailable() {
		note("tool %s requires a GUI, none available", desc.Name)
		return false, ""
	}

	return true, resolvedPath
}

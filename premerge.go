package filemerge

import (
	"strconv"

	"github.com/ujent/filemerge/internal/simplemerge"
)

// PremergeDriver runs the simple-merge primitive ahead of any tool for
// full-merge strategies; its output may be kept, discarded in favor of the
// main strategy, or restored from backup.
type PremergeDriver struct {
	Backup *BackupManager
	UI     UI
}

// Run returns 0 when premerge alone resolved the merge cleanly (the
// destination already holds the clean result), or 1 to continue with the
// main merge strategy.
func (d *PremergeDriver) Run(req *MergeRequest, tool *ToolDescriptor, symlink, binary bool, labels []string, backup *Backup) (int, error) {
	if symlink || req.Local.IsAbsent() || req.Other.IsAbsent() {
		return 1, nil
	}

	policy := ""
	if tool.Section != nil {
		policy = tool.Section.Premerge
	}

	enabled, keepMode, err := parsePremergePolicy(tool.Name, policy, binary)
	if err != nil {
		return 0, err
	}

	if !enabled {
		return 1, nil
	}

	workLabels := labels
	if keepMode == "keep-merge3" && len(workLabels) < 3 {
		workLabels = append(append([]string{}, workLabels...), "base")
	}

	localData, err := req.Local.Data()
	if err != nil {
		return 0, err
	}

	ancestorData, err := req.Ancestor.Data()
	if err != nil {
		return 0, err
	}

	otherData, err := req.Other.Data()
	if err != nil {
		return 0, err
	}

	result, err := simplemerge.Run(localData, ancestorData, otherData, workLabels, simplemerge.Merge, false)
	if err != nil {
		return 0, err
	}

	if err := writeFileContent(req.WorkingContext.Filesystem(), req.Local.Path(), result.Output); err != nil {
		return 0, err
	}

	if result.Status == 0 {
		d.UI.Debug("premerge successful")
		return 0, nil
	}

	if keepMode != "keep" && keepMode != "keep-merge3" {
		if err := d.Backup.Restore(req.WorkingContext, req.Local.Path(), req.Local.Flags(), backup); err != nil {
			return 0, err
		}
	}

	return 1, nil
}

// parsePremergePolicy interprets a merge-tools.<tool>.premerge value: a
// bool, "keep", or "keep-merge3". An unset value defaults to the negation
// of binary. Anything else is a configuration error.
func parsePremergePolicy(toolName, value string, binary bool) (enabled bool, keepMode string, err error) {
	if value == "" {
		return !binary, "", nil
	}

	switch value {
	case "keep", "keep-merge3":
		return true, value, nil
	}

	b, perr := strconv.ParseBool(value)
	if perr != nil {
		return false, "", &ConfigError{Tool: toolName, Key: "premerge", Value: value}
	}

	return b, "", nil
}

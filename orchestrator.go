package filemerge

import (
	"fmt"
	"strings"
)

// maxLabelWidth bounds a formatted conflict-marker label so a
// pathologically long commit description can't blow out marker lines.
const maxLabelWidth = 80 - 8

// LabelFormatterFunc renders a conflict-marker label through the external
// templating facade; the core never parses templates itself.
type LabelFormatterFunc func(ctx ChangeContext, template, label string, padWidth int) string

// Core composes the Tool Registry, Tool Picker, Capability Filter, Backup
// Manager, Premerge Driver, Internal Strategies, External Driver and
// Post-Check into the public premerge/filemerge entry points.
type Core struct {
	Registry       *ToolRegistry
	Config         *Config
	UI             UI
	Picker         *ToolPicker
	Capability     *CapabilityFilter
	Backup         *BackupManager
	PremergeDriver *PremergeDriver
	External       *ExternalDriver
	PostCheck      *PostCheck
	TagMerger      TagMerger
	LabelFormatter LabelFormatterFunc
}

// NewCore wires the default collaborators around cfg and ui: a fresh
// registry with the built-in strategies installed, and a picker/capability
// filter/backup manager/premerge driver/external driver/post-check set
// that all share them.
func NewCore(cfg *Config, ui UI) *Core {
	reg := NewToolRegistry()
	LoadInternalMerge(reg)

	capability := &CapabilityFilter{UI: ui}
	backup := &BackupManager{}

	return &Core{
		Registry:       reg,
		Config:         cfg,
		UI:             ui,
		Picker:         &ToolPicker{Registry: reg, Config: cfg, Capability: capability, UI: ui},
		Capability:     capability,
		Backup:         backup,
		PremergeDriver: &PremergeDriver{Backup: backup, UI: ui},
		External:       &ExternalDriver{UI: ui},
		PostCheck:      &PostCheck{UI: ui},
	}
}

// Premerge runs the orchestrator with the premerge flag set.
func (c *Core) Premerge(req *MergeRequest) (*MergeOutcome, error) {
	return c.run(true, req)
}

// Filemerge runs the orchestrator with the premerge flag cleared.
func (c *Core) Filemerge(req *MergeRequest) (*MergeOutcome, error) {
	return c.run(false, req)
}

func (c *Core) run(premergeFlag bool, req *MergeRequest) (*MergeOutcome, error) {
	if !req.Other.Cmp(req.Local) {
		return &MergeOutcome{Completed: true, Status: 0, Deleted: false}, nil
	}

	binary := req.Local.IsBinary() || req.Other.IsBinary() || req.Ancestor.IsBinary()
	symlink := strings.Contains(req.Local.Flags(), "l") || strings.Contains(req.Other.Flags(), "l")
	changeDelete := req.Local.IsAbsent() || req.Other.IsAbsent()

	pick := c.Picker.Pick(req.OriginalPath, binary, symlink, changeDelete)
	name := normalizeInternalName(pick.Name)

	tool := c.Registry.Lookup(name)
	if tool == nil {
		tool = c.Picker.resolve(name)
	}

	c.UI.Debug("picked tool %s for %s (binary=%v symlink=%v changedelete=%v)", name, req.OriginalPath, binary, symlink, changeDelete)

	execPath := pick.ExecPath
	if tool.Kind == ToolExternal && execPath == "" {
		if path, found := findExternalTool(tool); found {
			execPath = path
		}
	}

	if tool.MergeType == NoMerge {
		ctx := &strategyContext{
			Req: req, Tool: tool, Symlink: symlink, Binary: binary, ChangeDelete: changeDelete,
			Labels: req.Labels, UI: c.UI, TagMerger: c.TagMerger,
		}

		_, status, deleted, err := c.dispatch(tool, ctx, execPath, nil)
		if err != nil {
			return nil, err
		}

		return &MergeOutcome{Completed: true, Status: status, Deleted: deleted}, nil
	}

	if premergeFlag {
		if req.OriginalPath != req.Other.Path() {
			c.UI.Status("merging %s and %s to %s", req.OriginalPath, req.Other.Path(), req.Local.Path())
		} else {
			c.UI.Status("merging %s", req.Local.Path())
		}

		if tool.Precheck != nil {
			if reject, reason := tool.Precheck(req, symlink, changeDelete); reject {
				c.UI.Warn(onFailureMessage(tool, req.Local.Path(), reason))
				return &MergeOutcome{Completed: true, Status: 1, Deleted: false}, nil
			}
		}
	}

	backup, err := c.Backup.MakeBackup(req.Local, premergeFlag, req.WorkingContext)
	if err != nil {
		return nil, err
	}

	labels := c.formatLabels(req)

	if premergeFlag && tool.MergeType == FullMerge {
		status, err := c.PremergeDriver.Run(req, tool, symlink, binary, labels, backup)
		if err != nil {
			return nil, err
		}

		if status == 0 {
			if err := c.Backup.Discard(req.WorkingContext, backup); err != nil {
				return nil, err
			}

			return &MergeOutcome{Completed: true, Status: 0, Deleted: false}, nil
		}

		return &MergeOutcome{Completed: false, Status: status, Deleted: false}, nil
	}

	ctx := &strategyContext{
		Req: req, Tool: tool, Symlink: symlink, Binary: binary, ChangeDelete: changeDelete,
		Labels: labels, Backup: backup, UI: c.UI, TagMerger: c.TagMerger,
	}

	needCheck, status, deleted, err := c.dispatch(tool, ctx, execPath, backup)
	if err != nil {
		return nil, err
	}

	if needCheck {
		status, err = c.PostCheck.Run(req, tool, status, binary, backup)
		if err != nil {
			return nil, err
		}
	}

	if status != 0 {
		if req.WorkingContext.IsInMemory() {
			return nil, &InMemoryConflictError{Paths: []string{req.Local.Path()}, Reason: onFailureMessage(tool, req.Local.Path(), "")}
		}

		c.UI.Warn(onFailureMessage(tool, req.Local.Path(), ""))

		switch onFailurePolicy(c.Config) {
		case "halt":
			return nil, &InterventionRequiredError{Path: req.Local.Path()}
		case "prompt":
			choice, perr := c.UI.Prompt("continue merge operation?",
				[]Choice{{Key: "yes", Label: "(y)es"}, {Key: "no", Label: "(n)o"}}, "yes")
			if perr != nil || choice == "no" {
				return nil, &InterventionRequiredError{Path: req.Local.Path()}
			}
		default:
			// "continue" and any unrecognized value fall through silently.
		}
	}

	if status == 0 {
		if err := c.Backup.Discard(req.WorkingContext, backup); err != nil {
			return nil, err
		}
	}

	return &MergeOutcome{Completed: true, Status: status, Deleted: deleted}, nil
}

func (c *Core) dispatch(tool *ToolDescriptor, ctx *strategyContext, execPath string, backup *Backup) (bool, int, bool, error) {
	if tool.Kind == ToolInternal {
		if tool.run == nil {
			return false, 1, false, ErrUnknownTool
		}

		return tool.run(ctx)
	}

	status, err := c.External.Run(ctx.Req, tool, execPath, backup)
	if err != nil {
		return false, 0, false, err
	}

	return true, status, false, nil
}

// formatLabels defaults to ["local", "other"], then renders each label
// through the template facade (unless ui.mergemarkers is "basic"),
// truncates to maxLabelWidth, and pads to a common width.
func (c *Core) formatLabels(req *MergeRequest) []string {
	labels := req.Labels
	if len(labels) == 0 {
		labels = []string{"local", "other"}
	}

	if c.Config.cfgStr("ui.mergemarkers") == "basic" {
		return labels
	}

	template := c.Config.cfgStr("ui.mergemarkertemplate")
	contexts := []FileVersion{req.Local, req.Other, req.Ancestor}

	rendered := make([]string, len(labels))
	width := 0

	for i, l := range labels {
		out := l

		if c.LabelFormatter != nil {
			var ctx ChangeContext
			if i < len(contexts) {
				ctx = contexts[i].ChangeContext()
			}

			out = c.LabelFormatter(ctx, template, l, 0)
		}

		out = ellipsisTruncate(out, maxLabelWidth)
		rendered[i] = out

		if len(out) > width {
			width = len(out)
		}
	}

	for i, out := range rendered {
		rendered[i] = padRight(out, width)
	}

	return rendered
}

func ellipsisTruncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	if max <= 3 {
		return s[:max]
	}

	return s[:max-3] + "..."
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}

	return s + strings.Repeat(" ", width-len(s))
}

func normalizeInternalName(name string) string {
	if strings.HasPrefix(name, "internal:") {
		return ":" + strings.TrimPrefix(name, "internal:")
	}

	return name
}

func onFailureMessage(tool *ToolDescriptor, path, reason string) string {
	if tool.OnFailureMessage != "" {
		return fmt.Sprintf(tool.OnFailureMessage, path)
	}

	if reason != "" {
		return fmt.Sprintf("merging %s failed: %s", path, reason)
	}

	return fmt.Sprintf("merging %s failed!", path)
}

// onFailurePolicy reads merge.on-failure; any value other than "halt" or
// "prompt" -- including one never seen before -- is treated as
// "continue", matching the original's fallthrough structure.
func onFailurePolicy(cfg *Config) string {
	switch strings.ToLower(cfg.cfgStr("merge.on-failure")) {
	case "halt":
		return "halt"
	case "prompt":
		return "prompt"
	default:
		return "continue"
	}
}

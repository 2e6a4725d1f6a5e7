package filemerge

import (
	"os"
	"strings"

	"github.com/gobwas/glob"
)

// ToolPicker resolves which strategy applies to a candidate file, honoring
// forced override, environment override, the path-pattern map, the
// configured UI tool, the priority-sorted external tools, and the final
// fallbacks, in that order.
type ToolPicker struct {
	Registry   *ToolRegistry
	Config     *Config
	Capability *CapabilityFilter
	UI         UI
	// Getenv defaults to os.Getenv; overridable for tests.
	Getenv func(string) string
}

// PickResult is the picker's output: the chosen tool's canonical name, its
// quoted path (for pass-through/display), and, for external tools, the
// resolved executable path the External Driver should invoke.
type PickResult struct {
	Name     string
	ToolPath string
	ExecPath string
}

// Pick resolves a tool for a candidate file with the given properties.
func (p *ToolPicker) Pick(path string, binary, symlink, changeDelete bool) PickResult {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if forced := p.Config.cfgStr("ui.forcemerge"); forced != "" {
		return p.override(forced, changeDelete, true)
	}

	if env := getenv("HGMERGE"); env != "" {
		return p.override(env, changeDelete, false)
	}

	for _, entry := range p.Config.Patterns() {
		g, err := glob.Compile(entry.Pattern)
		if err != nil {
			continue
		}

		if !g.Match(path) {
			continue
		}

		desc := p.resolve(entry.Tool)
		if ok, resolved := p.Capability.Check(desc, symlink, false, changeDelete, true); ok {
			return p.result(entry.Tool, desc, resolved)
		}
	}

	for _, name := range p.pool(changeDelete) {
		desc := p.resolve(name)
		if desc.Disabled {
			continue
		}

		if ok, resolved := p.Capability.Check(desc, symlink, binary, changeDelete, false); ok {
			return p.result(name, desc, resolved)
		}
	}

	if symlink || binary || changeDelete {
		if !changeDelete {
			p.UI.Warn("no tool found to merge %s", path)
		}

		return PickResult{Name: ":prompt"}
	}

	return PickResult{Name: ":merge"}
}

// override implements steps 1 (ui.forcemerge) and 2 (HGMERGE): resolve
// quoting a path only when quote is true (forced override); the
// environment override never resolves a path.
func (p *ToolPicker) override(name string, changeDelete, quote bool) PickResult {
	desc := p.resolve(name)

	if changeDelete && !(desc.Kind == ToolInternal && desc.MergeType == NoMerge) {
		return PickResult{Name: ":prompt"}
	}

	if quote && desc.Kind == ToolExternal {
		if path, found := findExternalTool(desc); found {
			return PickResult{Name: name, ToolPath: shellQuote(path), ExecPath: path}
		}
	}

	return PickResult{Name: name, ToolPath: name}
}

// pool builds the priority-sorted candidate list for step 4: enabled
// merge-tools.* entries highest-priority-first, ui.merge prepended at the
// front when eligible, and the legacy "hgmerge" name appended last.
func (p *ToolPicker) pool(changeDelete bool) []string {
	names := p.Config.ToolNames()

	entries := make([]prioritizedTool, 0, len(names))
	for i, name := range names {
		desc := p.resolve(name)
		if desc.Disabled {
			continue
		}

		entries = append(entries, prioritizedTool{name: name, priority: desc.Priority, seq: i})
	}

	sorted := sortedByPriority(entries)

	if uiMerge := p.Config.cfgStr("ui.merge"); uiMerge != "" {
		known := p.Registry.Lookup(uiMerge) != nil || p.Config.ToolSection(uiMerge) != nil
		if known || !changeDelete {
			sorted = append([]string{uiMerge}, sorted...)
		}
	}

	return append(sorted, "hgmerge")
}

// resolve returns the descriptor for name: a registered internal strategy
// (aliases included) if one exists, otherwise a descriptor synthesized
// from merge-tools.<name> configuration (or a bare pass-through if even
// that is absent).
func (p *ToolPicker) resolve(name string) *ToolDescriptor {
	if d := p.Registry.Lookup(name); d != nil {
		return d
	}

	sec := p.Config.ToolSection(name)
	desc := &ToolDescriptor{
		Name:      name,
		Kind:      ToolExternal,
		MergeType: FullMerge,
	}

	if sec != nil {
		desc.Section = sec
		desc.Disabled = sec.Disabled
		desc.HandlesSymlink = sec.Symlink
		desc.HandlesBinary = sec.Binary
		desc.RequiresGUI = sec.GUI
		desc.ArgTemplate = sec.Args
		desc.ExternalCommand = sec.Executable

		if sec.Priority != nil {
			desc.Priority = *sec.Priority
		}
	}

	return desc
}

func (p *ToolPicker) result(name string, desc *ToolDescriptor, resolvedPath string) PickResult {
	if desc.Kind == ToolExternal && resolvedPath != "" {
		return PickResult{Name: name, ToolPath: shellQuote(resolvedPath), ExecPath: resolvedPath}
	}

	return PickResult{Name: name}
}

func shellQuote(s string) string {
	if s == "" {
		return s
	}

	if !strings.ContainsAny(s, " \t'\"") {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

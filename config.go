package filemerge

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/src-d/gcfg"
)

// rawConfig mirrors the ini sections the core consumes. It is populated by
// gcfg, the same parser go-git uses for .git/config.
type rawConfig struct {
	UI struct {
		ForceMerge          string
		Merge               string
		MergeMarkers        string
		MergeMarkerTemplate string
	}
	Merge struct {
		OnFailure string `gcfg:"on-failure"`
	}
	MergePatterns map[string]string `gcfg:"merge-patterns"`
	MergeTools    map[string]*mergeToolSection `gcfg:"merge-tools"`
}

type mergeToolSection struct {
	Priority       *int
	Disabled       bool
	Symlink        bool
	Binary         bool
	GUI            bool
	Premerge       string
	Executable     string
	Args           string
	RegKey         string
	RegKeyAlt      string
	RegName        string
	RegAppend      string
	Check          []string
	CheckConflicts bool
	CheckChanged   bool
	FixEOL         bool
}

// Config is the typed configuration facade the core reads policy from. It
// wraps gcfg's ini parser behind the cfg_str lookup for the ui.*/merge.*
// scalars, and behind typed accessors (ToolSection, Patterns, ToolNames)
// for everything else. Boolean merge-tools.<tool>.* settings (disabled,
// symlink, binary, gui, checkconflicts, checkchanged, fixeol) need no
// separate cfg_bool lookup: gcfg decodes them straight into mergeToolSection's
// bool fields, which callers read directly.
type Config struct {
	raw rawConfig
	// patternOrder preserves merge-patterns declaration order, which gcfg's
	// map does not.
	patternOrder []string
	// toolOrder preserves merge-tools declaration order for priority ties.
	toolOrder []string
}

// LoadConfig parses ini-style config text (the same dialect as .git/config)
// into a Config.
func LoadConfig(text string) (*Config, error) {
	cfg := &Config{}

	if err := gcfg.ReadStringInto(&cfg.raw, text); err != nil {
		return nil, errors.Wrap(err, "filemerge: parsing configuration")
	}

	cfg.patternOrder = flatSectionKeyOrder(text, "merge-patterns")
	cfg.toolOrder = sectionOrder(text, "merge-tools")

	return cfg, nil
}

// NewConfig returns an empty configuration, useful for tests and for
// programs that build policy without an ini source.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.raw.MergePatterns = map[string]string{}
	cfg.raw.MergeTools = map[string]*mergeToolSection{}

	return cfg
}

// sectionOrder scans raw ini text for "[section \"name\"]" headers and
// returns the subsection names in first-seen order. gcfg's map-valued
// fields lose declaration order, and step 3/4 of the picker must honor it
// for deterministic tie-breaks.
func sectionOrder(text, section string) []string {
	prefix := "[" + section + " \""
	var order []string
	seen := map[string]bool{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		rest := line[len(prefix):]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			continue
		}

		name := rest[:end]
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}

	return order
}

// flatSectionKeyOrder scans raw ini text for every "[section]" block
// (not a quoted subsection) and returns their "key = value" variable names
// in first-seen order. merge-patterns uses arbitrary glob strings as
// gcfg map keys, which lose declaration order through reflection the same
// way subsection names do.
func flatSectionKeyOrder(text, section string) []string {
	header := "[" + section + "]"
	var order []string
	seen := map[string]bool{}
	inSection := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") {
			inSection = trimmed == header
			continue
		}

		if !inSection || trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		eq := strings.IndexByte(trimmed, '=')
		if eq < 0 {
			continue
		}

		key := strings.Trim(strings.TrimSpace(trimmed[:eq]), `"`)
		if key != "" && !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}

	return order
}

func (c *Config) cfgStr(key string) string {
	switch key {
	case "ui.forcemerge":
		return c.raw.UI.ForceMerge
	case "ui.merge":
		return c.raw.UI.Merge
	case "ui.mergemarkers":
		return c.raw.UI.MergeMarkers
	case "ui.mergemarkertemplate":
		return c.raw.UI.MergeMarkerTemplate
	case "merge.on-failure":
		return c.raw.Merge.OnFailure
	default:
		return ""
	}
}

// ToolSection returns the merge-tools.<name> section, or nil if unconfigured.
func (c *Config) ToolSection(name string) *mergeToolSection {
	if c.raw.MergeTools == nil {
		return nil
	}

	return c.raw.MergeTools[name]
}

// Patterns returns the merge-patterns entries in declaration order.
func (c *Config) Patterns() []PatternEntry {
	entries := make([]PatternEntry, 0, len(c.raw.MergePatterns))

	for _, name := range c.patternOrder {
		tool, ok := c.raw.MergePatterns[name]
		if !ok {
			continue
		}

		entries = append(entries, PatternEntry{Pattern: name, Tool: tool})
	}

	// Any pattern gcfg parsed that our order scan missed (e.g. produced
	// programmatically via NewConfig) is appended afterward.
	for name, tool := range c.raw.MergePatterns {
		found := false
		for _, e := range entries {
			if e.Pattern == name {
				found = true
				break
			}
		}
		if !found {
			entries = append(entries, PatternEntry{Pattern: name, Tool: tool})
		}
	}

	return entries
}

// ToolNames returns the configured merge-tools.* names in declaration
// order, falling back to map iteration for programmatically built configs.
func (c *Config) ToolNames() []string {
	names := make([]string, 0, len(c.raw.MergeTools))
	seen := map[string]bool{}

	for _, name := range c.toolOrder {
		if _, ok := c.raw.MergeTools[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	for name := range c.raw.MergeTools {
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	return names
}

// PatternEntry is one merge-patterns.<glob> = <tool> configuration line.
type PatternEntry struct {
	Pattern string
	Tool    string
}

// SetTool installs a merge-tools.<name> section programmatically, for
// tests and embedders that build configuration without an ini string.
func (c *Config) SetTool(name string, section *mergeToolSection) {
	if c.raw.MergeTools == nil {
		c.raw.MergeTools = map[string]*mergeToolSection{}
	}

	c.raw.MergeTools[name] = section
	c.toolOrder = append(c.toolOrder, name)
}

// SetPattern installs a merge-patterns entry programmatically, preserving
// declaration order for deterministic iteration.
func (c *Config) SetPattern(pattern, tool string) {
	if c.raw.MergePatterns == nil {
		c.raw.MergePatterns = map[string]string{}
	}

	c.raw.MergePatterns[pattern] = tool
	c.patternOrder = append(c.patternOrder, pattern)
}

package filemerge

import "strings"

// ToolRegistry maps canonical tool names to descriptors. A name, its
// ":name" form and its "internal:name" form all resolve to the same entry;
// all three keys are written at registration time, and Lookup also
// rewrites an "internal:" prefix to ":".
type ToolRegistry struct {
	tools map[string]*ToolDescriptor
}

// NewToolRegistry returns an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: map[string]*ToolDescriptor{}}
}

// Register installs desc under its bare name, ":name" and "internal:name".
// Registration is expected once at startup; the registry is read-only
// thereafter and may be shared across goroutines without locking.
func (r *ToolRegistry) Register(desc *ToolDescriptor) {
	name := desc.Name
	r.tools[name] = desc
	r.tools[":"+name] = desc
	r.tools["internal:"+name] = desc
}

// Lookup normalizes an "internal:" prefix to ":" before resolving.
func (r *ToolRegistry) Lookup(name string) *ToolDescriptor {
	if strings.HasPrefix(name, "internal:") {
		name = ":" + strings.TrimPrefix(name, "internal:")
	}

	return r.tools[name]
}

// RegisterExternal installs a merge-tools.* configured tool under its bare
// name only; external tools have no ":name" alias.
func (r *ToolRegistry) RegisterExternal(desc *ToolDescriptor) {
	r.tools[desc.Name] = desc
}

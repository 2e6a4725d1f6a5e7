package filemerge

import "testing"

func TestRegistryAliasesAllThreeForms(t *testing.T) {
	reg := NewToolRegistry()
	desc := &ToolDescriptor{Name: "merge", Kind: ToolInternal, MergeType: FullMerge}
	reg.Register(desc)

	for _, name := range []string{"merge", ":merge", "internal:merge"} {
		if got := reg.Lookup(name); got != desc {
			t.Errorf("Lookup(%q) = %v, want %v", name, got, desc)
		}
	}
}

func TestRegistryLookupMissingReturnsNil(t *testing.T) {
	reg := NewToolRegistry()
	if got := reg.Lookup(":nope"); got != nil {
		t.Errorf("Lookup(:nope) = %v, want nil", got)
	}
}

func TestRegisterExternalHasNoColonAlias(t *testing.T) {
	reg := NewToolRegistry()
	desc := &ToolDescriptor{Name: "kdiff3", Kind: ToolExternal}
	reg.RegisterExternal(desc)

	if got := reg.Lookup("kdiff3"); got != desc {
		t.Errorf("Lookup(kdiff3) = %v, want %v", got, desc)
	}

	if got := reg.Lookup(":kdiff3"); got != nil {
		t.Errorf("Lookup(:kdiff3) = %v, want nil", got)
	}
}

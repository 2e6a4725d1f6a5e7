// Package filemerge implements the file-level three-way merge core: given a
// local and other version of a file plus their common ancestor, it picks a
// merge strategy, attempts automatic resolution, and reports whether
// conflicts remain.
package filemerge

import (
	"bytes"

	"gopkg.in/src-d/go-billy.v4"
)

// ChangeContext is an opaque handle to whatever the commit-graph collaborator
// uses to identify a revision. The core never inspects it beyond formatting.
type ChangeContext interface {
	// NodeID returns the short hex identifier used in the HG_OTHER_NODE
	// environment variable.
	NodeID() string
	String() string
}

// FileVersion is the contract the core consumes for one side (or the
// ancestor) of a merge. Callers own the concrete type; the core never
// constructs one except for the Absent stand-in below.
type FileVersion interface {
	Path() string
	Flags() string
	IsAbsent() bool
	IsBinary() bool
	Data() ([]byte, error)
	// Cmp reports whether the receiver's content differs from other's.
	Cmp(other FileVersion) bool
	ChangeContext() ChangeContext
}

// AbsentFileVersion stands in for a file missing from one side of a merge.
// Data always fails with ErrAbsentData, Flags is empty, and IsAbsent is
// always true.
type AbsentFileVersion struct {
	path string
	ctx  ChangeContext
}

// NewAbsentFileVersion builds the absent stand-in for path in the revision
// identified by ctx.
func NewAbsentFileVersion(path string, ctx ChangeContext) *AbsentFileVersion {
	return &AbsentFileVersion{path: path, ctx: ctx}
}

func (a *AbsentFileVersion) Path() string  { return a.path }
func (a *AbsentFileVersion) Flags() string { return "" }
func (a *AbsentFileVersion) IsAbsent() bool { return true }
func (a *AbsentFileVersion) IsBinary() bool { return false }

func (a *AbsentFileVersion) Data() ([]byte, error) {
	return nil, ErrAbsentData
}

// Cmp returns false iff other is also absent at the same path in the same
// change context; otherwise true.
func (a *AbsentFileVersion) Cmp(other FileVersion) bool {
	o, ok := other.(*AbsentFileVersion)
	if !ok {
		return true
	}

	return !(o.path == a.path && o.ctx == a.ctx)
}

func (a *AbsentFileVersion) ChangeContext() ChangeContext { return a.ctx }

// BytesFileVersion is a concrete, in-memory FileVersion useful for tests and
// for callers that already hold the full content in memory.
type BytesFileVersion struct {
	PathName string
	FlagsStr string
	Binary   bool
	Content  []byte
	Ctx      ChangeContext
}

func (b *BytesFileVersion) Path() string   { return b.PathName }
func (b *BytesFileVersion) Flags() string  { return b.FlagsStr }
func (b *BytesFileVersion) IsAbsent() bool { return false }
func (b *BytesFileVersion) IsBinary() bool { return b.Binary }

func (b *BytesFileVersion) Data() ([]byte, error) { return b.Content, nil }

func (b *BytesFileVersion) Cmp(other FileVersion) bool {
	if other.IsAbsent() {
		return true
	}

	od, err := other.Data()
	if err != nil {
		return true
	}

	return !bytes.Equal(b.Content, od)
}

func (b *BytesFileVersion) ChangeContext() ChangeContext { return b.Ctx }

// MergeType classifies a tool's relationship to premerge and the simple
// merge primitive.
type MergeType int

const (
	NoMerge MergeType = iota
	MergeOnly
	FullMerge
)

func (t MergeType) String() string {
	switch t {
	case NoMerge:
		return "no-merge"
	case MergeOnly:
		return "merge-only"
	case FullMerge:
		return "full-merge"
	default:
		return "unknown"
	}
}

// PrecheckFunc rejects a candidate run before any content is touched; it
// returns reject=true, together with a failure reason, to reject.
type PrecheckFunc func(req *MergeRequest, symlink, changeDelete bool) (reject bool, reason string)

// ToolDescriptor describes one entry in the Tool Registry, whether an
// internal strategy or an externally configured tool.
type ToolDescriptor struct {
	Name                string
	Kind                ToolKind
	MergeType           MergeType
	HandlesSymlink      bool
	HandlesBinary       bool
	HandlesChangeDelete bool // only meaningful when Kind == ToolInternal && MergeType == NoMerge
	RequiresGUI         bool
	Priority            int
	Disabled            bool
	Precheck            PrecheckFunc
	OnFailureMessage    string
	ExternalCommand     string
	ArgTemplate         string
	// Section is the raw merge-tools.<name> config, used by the Capability
	// Filter to probe regkey/regkeyalt/executable for external tools. Nil
	// for internal strategies.
	Section *mergeToolSection
	// run is the strategy implementation for internal tools; nil for
	// external ones, which the orchestrator dispatches to the External
	// Driver instead.
	run internalStrategyFunc
}

type ToolKind int

const (
	ToolInternal ToolKind = iota
	ToolExternal
)

// WorkingContext is the host services facade: physical I/O, temp-file
// creation and the in-memory/on-disk distinction all flow through it.
type WorkingContext interface {
	Filesystem() billy.Filesystem
	// IsInMemory reports whether Filesystem() is backed by an in-memory
	// billy filesystem rather than the OS filesystem.
	IsInMemory() bool
	// Root is the repository root, used as the external tool's working
	// directory.
	Root() string
}

// MergeRequest bundles the three file versions and merge-identifying
// metadata the orchestrator needs.
type MergeRequest struct {
	Local          FileVersion
	Other          FileVersion
	Ancestor       FileVersion
	OriginalPath   string
	MyNode         string
	WorkingContext WorkingContext
	Labels         []string
}

// MergeOutcome is the orchestrator's public result.
type MergeOutcome struct {
	Completed bool
	Status    int
	Deleted   bool
}

// Backup is a content snapshot of the destination file taken before
// premerge runs.
type Backup struct {
	PhysicalPath string
	Content      []byte
	InMemory     bool
}

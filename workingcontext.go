package filemerge

import (
	"gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/memfs"
	"gopkg.in/src-d/go-billy.v4/osfs"
)

// fsWorkingContext is the default WorkingContext, backed directly by a
// billy.Filesystem. Its "in-memory"-ness is decided by a type assertion
// against billy's in-memory filesystem, the same way go-git itself tells
// overlay/in-memory worktrees apart from on-disk ones, rather than a
// boolean flag a caller could set inconsistently with the filesystem it
// passed in.
type fsWorkingContext struct {
	fs   billy.Filesystem
	root string
}

// NewOnDiskWorkingContext roots a working context at root on the OS
// filesystem.
func NewOnDiskWorkingContext(root string) WorkingContext {
	return &fsWorkingContext{fs: osfs.New(root), root: root}
}

// NewInMemoryWorkingContext backs a working context with an in-memory
// filesystem, for merges that must not touch disk (and that therefore
// reject external tools, dump/forcedump, and interactive prompts).
func NewInMemoryWorkingContext() WorkingContext {
	return &fsWorkingContext{fs: memfs.New(), root: ""}
}

// NewWorkingContext wraps an already-constructed billy.Filesystem,
// inferring in-memory-ness from its concrete type.
func NewWorkingContext(fs billy.Filesystem, root string) WorkingContext {
	return &fsWorkingContext{fs: fs, root: root}
}

func (c *fsWorkingContext) Filesystem() billy.Filesystem { return c.fs }

func (c *fsWorkingContext) IsInMemory() bool {
	_, ok := c.fs.(*memfs.Memory)
	return ok
}

func (c *fsWorkingContext) Root() string { return c.root }

package filemerge

import (
	"fmt"

	"github.com/ujent/filemerge/internal/simplemerge"
)

// TagMerger is the opaque tag-file merge collaborator the tagmerge
// strategy delegates to. The core never implements tag-merge semantics
// itself.
type TagMerger interface {
	Merge(local, ancestor, other []byte, labels []string) (merged []byte, status int, err error)
}

// strategyContext bundles everything an internal strategy function needs:
// the request, the chosen tool's descriptor, the file-property flags
// computed by the orchestrator, working labels, the backup taken before
// premerge, and the collaborators strategies may call back into.
type strategyContext struct {
	Req          *MergeRequest
	Tool         *ToolDescriptor
	Symlink      bool
	Binary       bool
	ChangeDelete bool
	Labels       []string
	Backup       *Backup

	UI        UI
	TagMerger TagMerger
}

// internalStrategyFunc is the uniform signature every internal strategy
// implements: it returns whether Post-Check should run, the merge status,
// and whether the destination ended up deleted.
type internalStrategyFunc func(ctx *strategyContext) (needCheck bool, status int, deleted bool, err error)

// precheckRejectSymlinkChangeDelete is shared by every full-merge and
// merge-only internal strategy: none of them can produce a sensible
// textual merge across a symlink or a change/delete conflict.
func precheckRejectSymlinkChangeDelete(req *MergeRequest, symlink, changeDelete bool) (bool, string) {
	if symlink {
		return true, "cannot merge symlinks"
	}

	if changeDelete {
		return true, "cannot merge a change/delete conflict"
	}

	return false, ""
}

// LoadInternalMerge installs the built-in strategies into reg under both
// ":name" and "internal:name" keys.
func LoadInternalMerge(reg *ToolRegistry) {
	reg.Register(&ToolDescriptor{Name: "prompt", Kind: ToolInternal, MergeType: NoMerge, HandlesSymlink: true, HandlesBinary: true, HandlesChangeDelete: true, run: internalPrompt})
	reg.Register(&ToolDescriptor{Name: "local", Kind: ToolInternal, MergeType: NoMerge, HandlesSymlink: true, HandlesBinary: true, HandlesChangeDelete: true, run: internalLocal})
	reg.Register(&ToolDescriptor{Name: "other", Kind: ToolInternal, MergeType: NoMerge, HandlesSymlink: true, HandlesBinary: true, HandlesChangeDelete: true, run: internalOther})
	reg.Register(&ToolDescriptor{Name: "fail", Kind: ToolInternal, MergeType: NoMerge, HandlesSymlink: true, HandlesBinary: true, HandlesChangeDelete: true, run: internalFail})

	reg.Register(&ToolDescriptor{Name: "merge", Kind: ToolInternal, MergeType: FullMerge, Precheck: precheckRejectSymlinkChangeDelete, run: internalMerge})
	reg.Register(&ToolDescriptor{Name: "merge3", Kind: ToolInternal, MergeType: FullMerge, Precheck: precheckRejectSymlinkChangeDelete, run: internalMerge3})
	reg.Register(&ToolDescriptor{Name: "union", Kind: ToolInternal, MergeType: FullMerge, Precheck: precheckRejectSymlinkChangeDelete, run: internalUnion})
	reg.Register(&ToolDescriptor{Name: "merge-local", Kind: ToolInternal, MergeType: MergeOnly, Precheck: precheckRejectSymlinkChangeDelete, run: internalMergeLocal})
	reg.Register(&ToolDescriptor{Name: "merge-other", Kind: ToolInternal, MergeType: MergeOnly, Precheck: precheckRejectSymlinkChangeDelete, run: internalMergeOther})
	reg.Register(&ToolDescriptor{Name: "tagmerge", Kind: ToolInternal, MergeType: MergeOnly, Precheck: precheckRejectSymlinkChangeDelete, run: internalTagMerge})
	reg.Register(&ToolDescriptor{Name: "dump", Kind: ToolInternal, MergeType: FullMerge, Precheck: precheckRejectSymlinkChangeDelete, run: internalDump})
	reg.Register(&ToolDescriptor{Name: "forcedump", Kind: ToolInternal, MergeType: MergeOnly, Precheck: precheckRejectSymlinkChangeDelete, run: internalForceDump})
	reg.Register(&ToolDescriptor{Name: "abort", Kind: ToolInternal, MergeType: FullMerge, Precheck: precheckRejectSymlinkChangeDelete, run: internalAbort})
}

func internalPrompt(ctx *strategyContext) (bool, int, bool, error) {
	if ctx.Req.WorkingContext.IsInMemory() {
		return false, 0, false, &InMemoryConflictError{
			Paths:  []string{ctx.Req.Local.Path()},
			Reason: "prompt strategy requires interactive resolution",
		}
	}

	path := ctx.Req.Local.Path()
	choices := []Choice{
		{Key: "changed", Label: "(c)hanged"},
		{Key: "delete", Label: "(d)elete"},
		{Key: "unresolved", Label: "(u)nresolved"},
	}

	if ctx.Req.Other.IsAbsent() {
		label := surviveLabel(ctx.Labels, 0)
		question := fmt.Sprintf("local%s changed %s which other deleted", label, path)

		choice, err := ctx.UI.Prompt(question, choices, "changed")
		if err != nil {
			choice = "unresolved"
		}

		switch choice {
		case "changed":
			return internalLocal(ctx)
		case "delete":
			return internalOther(ctx)
		default:
			return internalFail(ctx)
		}
	}

	if ctx.Req.Local.IsAbsent() {
		label := surviveLabel(ctx.Labels, 1)
		question := fmt.Sprintf("other%s changed %s which local deleted", label, path)

		choice, err := ctx.UI.Prompt(question, choices, "changed")
		if err != nil {
			choice = "unresolved"
		}

		switch choice {
		case "changed":
			return internalOther(ctx)
		case "delete":
			return internalLocal(ctx)
		default:
			return internalFail(ctx)
		}
	}

	choice, err := ctx.UI.Prompt(
		fmt.Sprintf("keep (l)ocal, take (o)ther, or leave (u)nresolved for %s?", path),
		[]Choice{
			{Key: "local", Label: "(l)ocal"},
			{Key: "other", Label: "(o)ther"},
			{Key: "unresolved", Label: "(u)nresolved"},
		}, "unresolved")
	if err != nil {
		choice = "unresolved"
	}

	switch choice {
	case "local":
		return internalLocal(ctx)
	case "other":
		return internalOther(ctx)
	default:
		return internalFail(ctx)
	}
}

// surviveLabel formats the surviving side's label in brackets, e.g.
// " [working copy]", when labels were supplied, matching the original's
// partextras-style prompt parametrization.
func surviveLabel(labels []string, idx int) string {
	if idx < len(labels) && labels[idx] != "" {
		return " [" + labels[idx] + "]"
	}

	return ""
}

func internalLocal(ctx *strategyContext) (bool, int, bool, error) {
	return false, 0, ctx.Req.Local.IsAbsent(), nil
}

func internalOther(ctx *strategyContext) (bool, int, bool, error) {
	if ctx.Req.Other.IsAbsent() {
		_ = ctx.Req.WorkingContext.Filesystem().Remove(ctx.Req.Local.Path())
		return false, 0, true, nil
	}

	data, err := ctx.Req.Other.Data()
	if err != nil {
		return false, 0, false, err
	}

	if err := writeFileWithFlags(ctx.Req.WorkingContext.Filesystem(), ctx.Req.Local.Path(), data, ctx.Req.Other.Flags()); err != nil {
		return false, 0, false, err
	}

	return false, 0, false, nil
}

func internalFail(ctx *strategyContext) (bool, int, bool, error) {
	if ctx.Req.Local.IsAbsent() {
		if data, err := ctx.Req.Other.Data(); err == nil {
			_ = writeFileWithFlags(ctx.Req.WorkingContext.Filesystem(), ctx.Req.Local.Path(), data, ctx.Req.Other.Flags())
		}
	}

	return false, 1, false, nil
}

func internalMerge(ctx *strategyContext) (bool, int, bool, error) {
	return runSimpleMergeStrategy(ctx, simplemerge.Merge, false)
}

func internalMerge3(ctx *strategyContext) (bool, int, bool, error) {
	if len(ctx.Labels) < 3 {
		ctx.Labels = append(append([]string{}, ctx.Labels...), "base")
	}

	return runSimpleMergeStrategy(ctx, simplemerge.Merge, true)
}

func internalUnion(ctx *strategyContext) (bool, int, bool, error) {
	return runSimpleMergeStrategy(ctx, simplemerge.Union, false)
}

func internalMergeLocal(ctx *strategyContext) (bool, int, bool, error) {
	return runSimpleMergeStrategy(ctx, simplemerge.LocalPick, false)
}

func internalMergeOther(ctx *strategyContext) (bool, int, bool, error) {
	return runSimpleMergeStrategy(ctx, simplemerge.OtherPick, false)
}

func internalTagMerge(ctx *strategyContext) (bool, int, bool, error) {
	if ctx.TagMerger == nil {
		return runSimpleMergeStrategy(ctx, simplemerge.Merge, false)
	}

	localData, err := ctx.Req.Local.Data()
	if err != nil {
		return false, 0, false, err
	}

	ancestorData, err := ctx.Req.Ancestor.Data()
	if err != nil {
		return false, 0, false, err
	}

	otherData, err := ctx.Req.Other.Data()
	if err != nil {
		return false, 0, false, err
	}

	merged, status, err := ctx.TagMerger.Merge(localData, ancestorData, otherData, ctx.Labels)
	if err != nil {
		return false, 0, false, err
	}

	if err := writeFileContent(ctx.Req.WorkingContext.Filesystem(), ctx.Req.Local.Path(), merged); err != nil {
		return false, 0, false, err
	}

	return true, status, false, nil
}

func internalDump(ctx *strategyContext) (bool, int, bool, error) {
	if ctx.Req.WorkingContext.IsInMemory() {
		return false, 0, false, &InMemoryConflictError{
			Paths:  []string{ctx.Req.Local.Path()},
			Reason: "dump strategy requires on-disk sidecar files",
		}
	}

	if err := writeSidecars(ctx); err != nil {
		return false, 0, false, err
	}

	return false, 1, false, nil
}

func internalForceDump(ctx *strategyContext) (bool, int, bool, error) {
	if ctx.Req.WorkingContext.IsInMemory() {
		return false, 0, false, &InMemoryConflictError{
			Paths:  []string{ctx.Req.Local.Path()},
			Reason: "forcedump strategy requires on-disk sidecar files",
		}
	}

	if err := writeSidecars(ctx); err != nil {
		return false, 0, false, err
	}

	return false, 1, false, nil
}

// writeSidecars places the three <path>.local/.other/.base files beside
// the destination. This risks colliding with tracked files of the same
// name; callers inherit that tradeoff from the legacy dump behavior.
func writeSidecars(ctx *strategyContext) error {
	fs := ctx.Req.WorkingContext.Filesystem()
	path := ctx.Req.Local.Path()

	if data, err := ctx.Req.Local.Data(); err == nil {
		if err := writeFileContent(fs, path+".local", data); err != nil {
			return err
		}
	}

	if data, err := ctx.Req.Other.Data(); err == nil {
		if err := writeFileContent(fs, path+".other", data); err != nil {
			return err
		}
	}

	if data, err := ctx.Req.Ancestor.Data(); err == nil {
		if err := writeFileContent(fs, path+".base", data); err != nil {
			return err
		}
	}

	return nil
}

func internalAbort(ctx *strategyContext) (bool, int, bool, error) {
	if !ctx.Req.WorkingContext.IsInMemory() {
		return false, 0, false, &RequiresInMemoryError{Path: ctx.Req.Local.Path()}
	}

	localData, err := ctx.Req.Local.Data()
	if err != nil {
		return false, 0, false, err
	}

	ancestorData, err := ctx.Req.Ancestor.Data()
	if err != nil {
		return false, 0, false, err
	}

	otherData, err := ctx.Req.Other.Data()
	if err != nil {
		return false, 0, false, err
	}

	result, err := simplemerge.Run(localData, ancestorData, otherData, ctx.Labels, simplemerge.Merge, false)
	if err != nil {
		return false, 0, false, err
	}

	if result.Status != 0 {
		return false, 0, false, &AbortMergeToolError{Path: ctx.Req.Local.Path()}
	}

	if err := writeFileContent(ctx.Req.WorkingContext.Filesystem(), ctx.Req.Local.Path(), result.Output); err != nil {
		return false, 0, false, err
	}

	return true, 0, false, nil
}

func runSimpleMergeStrategy(ctx *strategyContext, mode simplemerge.Mode, style bool) (bool, int, bool, error) {
	localData, err := ctx.Req.Local.Data()
	if err != nil {
		return false, 0, false, err
	}

	ancestorData, err := ctx.Req.Ancestor.Data()
	if err != nil {
		return false, 0, false, err
	}

	otherData, err := ctx.Req.Other.Data()
	if err != nil {
		return false, 0, false, err
	}

	result, err := simplemerge.Run(localData, ancestorData, otherData, ctx.Labels, mode, style)
	if err != nil {
		return false, 0, false, err
	}

	if err := writeFileContent(ctx.Req.WorkingContext.Filesystem(), ctx.Req.Local.Path(), result.Output); err != nil {
		return false, 0, false, err
	}

	return true, result.Status, false, nil
}

package filemerge

import (
	"io"
	"testing"
)

func newStrategyCtx(wc WorkingContext, local, ancestor, other FileVersion) *strategyContext {
	ui := &ConsoleUI{Out: io.Discard, ErrOut: io.Discard}

	return &strategyContext{
		Req: &MergeRequest{
			Local:          local,
			Other:          other,
			Ancestor:       ancestor,
			OriginalPath:   local.Path(),
			WorkingContext: wc,
		},
		Labels: []string{"local", "other"},
		UI:     ui,
	}
}

func TestInternalLocal(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("L")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("O")}
	ctx := newStrategyCtx(wc, local, &BytesFileVersion{PathName: "f.txt", Content: []byte("A")}, other)

	needCheck, status, deleted, err := internalLocal(ctx)
	if err != nil {
		t.Fatalf("internalLocal() error = %v", err)
	}

	if needCheck || status != 0 || deleted {
		t.Errorf("internalLocal() = (%v, %d, %v), want (false, 0, false)", needCheck, status, deleted)
	}

	if fileExists(wc.Filesystem(), "f.txt") {
		t.Error(":local wrote the destination, it should leave it untouched")
	}
}

func TestInternalOtherWritesOtherContent(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("L")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("O")}
	ctx := newStrategyCtx(wc, local, &BytesFileVersion{PathName: "f.txt", Content: []byte("A")}, other)

	_, status, deleted, err := internalOther(ctx)
	if err != nil {
		t.Fatalf("internalOther() error = %v", err)
	}

	if status != 0 || deleted {
		t.Errorf("internalOther() = (status=%d, deleted=%v), want (0, false)", status, deleted)
	}

	got, err := readFileContent(wc.Filesystem(), "f.txt")
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}

	if string(got) != "O" {
		t.Errorf("destination = %q, want %q", got, "O")
	}
}

func TestInternalOtherAbsentDeletes(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	if err := writeFileContent(wc.Filesystem(), "f.txt", []byte("L")); err != nil {
		t.Fatalf("seeding destination: %v", err)
	}

	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("L")}
	other := NewAbsentFileVersion("f.txt", fakeCtx("other"))
	ctx := newStrategyCtx(wc, local, &BytesFileVersion{PathName: "f.txt", Content: []byte("A")}, other)

	_, status, deleted, err := internalOther(ctx)
	if err != nil {
		t.Fatalf("internalOther() error = %v", err)
	}

	if status != 0 || !deleted {
		t.Errorf("internalOther() = (status=%d, deleted=%v), want (0, true)", status, deleted)
	}

	if fileExists(wc.Filesystem(), "f.txt") {
		t.Error("destination still exists after :other deleted it")
	}
}

func TestInternalFail(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("L")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("O")}
	ctx := newStrategyCtx(wc, local, &BytesFileVersion{PathName: "f.txt", Content: []byte("A")}, other)

	_, status, _, err := internalFail(ctx)
	if err != nil {
		t.Fatalf("internalFail() error = %v", err)
	}

	if status != 1 {
		t.Errorf("internalFail() status = %d, want 1", status)
	}
}

func TestInternalMergeClean(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\nB1\n")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("A2\nB\n")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\nB\n")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	needCheck, status, _, err := internalMerge(ctx)
	if err != nil {
		t.Fatalf("internalMerge() error = %v", err)
	}

	if !needCheck || status != 0 {
		t.Fatalf("internalMerge() = (needCheck=%v, status=%d), want (true, 0)", needCheck, status)
	}

	got, err := readFileContent(wc.Filesystem(), "f.txt")
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}

	if string(got) != "A2\nB1\n" {
		t.Errorf("destination = %q, want %q", got, "A2\nB1\n")
	}
}

func TestInternalMerge3AddsBaseLabel(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("L\n")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("O\n")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\n")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	_, status, _, err := internalMerge3(ctx)
	if err != nil {
		t.Fatalf("internalMerge3() error = %v", err)
	}

	if status == 0 {
		t.Fatal("internalMerge3() status = 0, want conflict for disjoint single-line changes")
	}

	if len(ctx.Labels) != 3 || ctx.Labels[2] != "base" {
		t.Errorf("ctx.Labels = %v, want a trailing \"base\" label", ctx.Labels)
	}
}

func TestInternalUnion(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\n")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("B\n")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	_, status, _, err := internalUnion(ctx)
	if err != nil {
		t.Fatalf("internalUnion() error = %v", err)
	}

	if status != 0 {
		t.Errorf("internalUnion() status = %d, want 0", status)
	}

	got, _ := readFileContent(wc.Filesystem(), "f.txt")
	if string(got) != "A\nB\n" {
		t.Errorf("destination = %q, want %q", got, "A\nB\n")
	}
}

func TestInternalMergeLocalAndMergeOther(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("L")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("O")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("A")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	if _, status, _, err := internalMergeLocal(ctx); err != nil || status != 0 {
		t.Fatalf("internalMergeLocal() = (status=%d, err=%v)", status, err)
	}

	got, _ := readFileContent(wc.Filesystem(), "f.txt")
	if string(got) != "L" {
		t.Errorf("merge-local destination = %q, want %q", got, "L")
	}

	if _, status, _, err := internalMergeOther(ctx); err != nil || status != 0 {
		t.Fatalf("internalMergeOther() = (status=%d, err=%v)", status, err)
	}

	got, _ = readFileContent(wc.Filesystem(), "f.txt")
	if string(got) != "O" {
		t.Errorf("merge-other destination = %q, want %q", got, "O")
	}
}

func TestInternalTagMergeFallsBackWithoutCollaborator(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\nB1\n")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("A2\nB\n")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\nB\n")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	_, status, _, err := internalTagMerge(ctx)
	if err != nil {
		t.Fatalf("internalTagMerge() error = %v", err)
	}

	if status != 0 {
		t.Errorf("internalTagMerge() status = %d, want 0", status)
	}
}

type stubTagMerger struct {
	merged []byte
	status int
}

func (s *stubTagMerger) Merge(local, ancestor, other []byte, labels []string) ([]byte, int, error) {
	return s.merged, s.status, nil
}

func TestInternalTagMergeDelegatesToCollaborator(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("A")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("B")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("C")}
	ctx := newStrategyCtx(wc, local, ancestor, other)
	ctx.TagMerger = &stubTagMerger{merged: []byte("merged-tags"), status: 0}

	_, status, _, err := internalTagMerge(ctx)
	if err != nil {
		t.Fatalf("internalTagMerge() error = %v", err)
	}

	if status != 0 {
		t.Errorf("internalTagMerge() status = %d, want 0", status)
	}

	got, _ := readFileContent(wc.Filesystem(), "f.txt")
	if string(got) != "merged-tags" {
		t.Errorf("destination = %q, want %q", got, "merged-tags")
	}
}

func TestInternalDumpRejectsInMemory(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("L")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("O")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("A")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	_, _, _, err := internalDump(ctx)
	if _, ok := err.(*InMemoryConflictError); !ok {
		t.Errorf("internalDump() error = %v, want *InMemoryConflictError", err)
	}
}

func TestInternalDumpWritesSidecars(t *testing.T) {
	wc := NewOnDiskWorkingContext(t.TempDir())
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("L")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("O")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("A")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	_, status, _, err := internalDump(ctx)
	if err != nil {
		t.Fatalf("internalDump() error = %v", err)
	}

	if status != 1 {
		t.Errorf("internalDump() status = %d, want 1", status)
	}

	for suffix, want := range map[string]string{".local": "L", ".other": "O", ".base": "A"} {
		got, err := readFileContent(wc.Filesystem(), "f.txt"+suffix)
		if err != nil {
			t.Fatalf("reading f.txt%s: %v", suffix, err)
		}
		if string(got) != want {
			t.Errorf("f.txt%s = %q, want %q", suffix, got, want)
		}
	}
}

func TestInternalAbortRaisesOnConflict(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("L\n")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("O\n")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\n")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	_, _, _, err := internalAbort(ctx)
	if _, ok := err.(*AbortMergeToolError); !ok {
		t.Errorf("internalAbort() error = %v, want *AbortMergeToolError", err)
	}
}

func TestInternalAbortSucceedsOnCleanMerge(t *testing.T) {
	wc := NewInMemoryWorkingContext()
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\nB1\n")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("A2\nB\n")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\nB\n")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	needCheck, status, _, err := internalAbort(ctx)
	if err != nil {
		t.Fatalf("internalAbort() error = %v", err)
	}

	if !needCheck || status != 0 {
		t.Errorf("internalAbort() = (needCheck=%v, status=%d), want (true, 0)", needCheck, status)
	}
}

func TestInternalAbortRejectsOnDiskContext(t *testing.T) {
	wc := NewOnDiskWorkingContext(t.TempDir())
	local := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\nB1\n")}
	other := &BytesFileVersion{PathName: "f.txt", Content: []byte("A2\nB\n")}
	ancestor := &BytesFileVersion{PathName: "f.txt", Content: []byte("A\nB\n")}
	ctx := newStrategyCtx(wc, local, ancestor, other)

	_, _, _, err := internalAbort(ctx)
	if _, ok := err.(*RequiresInMemoryError); !ok {
		t.Errorf("internalAbort() error = %v, want *RequiresInMemoryError", err)
	}
}

func TestPrecheckRejectSymlinkChangeDelete(t *testing.T) {
	if reject, _ := precheckRejectSymlinkChangeDelete(nil, true, false); !reject {
		t.Error("precheck should reject symlinks")
	}

	if reject, _ := precheckRejectSymlinkChangeDelete(nil, false, true); !reject {
		t.Error("precheck should reject change/delete")
	}

	if reject, _ := precheckRejectSymlinkChangeDelete(nil, false, false); reject {
		t.Error("precheck should accept a plain text conflict")
	}
}

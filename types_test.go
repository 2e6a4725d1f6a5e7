package filemerge

import "testing"

type fakeCtx string

func (c fakeCtx) NodeID() string { return string(c) }
func (c fakeCtx) String() string { return string(c) }

func TestAbsentFileVersionCmp(t *testing.T) {
	a := NewAbsentFileVersion("foo.txt", fakeCtx("rev1"))

	tests := []struct {
		name  string
		other FileVersion
		want  bool
	}{
		{"same path and context", NewAbsentFileVersion("foo.txt", fakeCtx("rev1")), false},
		{"different path", NewAbsentFileVersion("bar.txt", fakeCtx("rev1")), true},
		{"different context", NewAbsentFileVersion("foo.txt", fakeCtx("rev2")), true},
		{"present other", &BytesFileVersion{PathName: "foo.txt", Content: []byte("x")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Cmp(tt.other); got != tt.want {
				t.Errorf("Cmp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAbsentFileVersionInvariants(t *testing.T) {
	a := NewAbsentFileVersion("foo.txt", fakeCtx("rev1"))

	if !a.IsAbsent() {
		t.Error("IsAbsent() = false, want true")
	}

	if _, err := a.Data(); err != ErrAbsentData {
		t.Errorf("Data() error = %v, want ErrAbsentData", err)
	}
}

func TestBytesFileVersionCmp(t *testing.T) {
	local := &BytesFileVersion{PathName: "a.txt", Content: []byte("A\nB\n")}
	identical := &BytesFileVersion{PathName: "a.txt", Content: []byte("A\nB\n")}
	different := &BytesFileVersion{PathName: "a.txt", Content: []byte("A\nC\n")}

	if local.Cmp(identical) {
		t.Error("Cmp(identical) = true, want false")
	}

	if !local.Cmp(different) {
		t.Error("Cmp(different) = false, want true")
	}

	if !local.Cmp(NewAbsentFileVersion("a.txt", nil)) {
		t.Error("Cmp(absent) = false, want true")
	}
}

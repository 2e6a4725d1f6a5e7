package filemerge

import "testing"

type memDurableStore struct {
	records map[string][2]string // path -> [content, flags]
}

func newMemDurableStore() *memDurableStore {
	return &memDurableStore{records: map[string][2]string{}}
}

func (m *memDurableStore) Put(path string, content []byte, flags string) error {
	m.records[path] = [2]string{string(content), flags}
	return nil
}

func (m *memDurableStore) Get(path string) ([]byte, string, bool, error) {
	rec, ok := m.records[path]
	if !ok {
		return nil, "", false, nil
	}
	return []byte(rec[0]), rec[1], true, nil
}

func (m *memDurableStore) Delete(path string) error {
	delete(m.records, path)
	return nil
}

func TestMakeBackupSkipsAbsentDestination(t *testing.T) {
	mgr := &BackupManager{}
	wc := NewInMemoryWorkingContext()

	backup, err := mgr.MakeBackup(NewAbsentFileVersion("f.txt", fakeCtx("rev")), true, wc)
	if err != nil {
		t.Fatalf("MakeBackup() error = %v", err)
	}

	if backup != nil {
		t.Errorf("MakeBackup() = %+v, want nil for an absent destination", backup)
	}
}

func TestMakeBackupWritesOnlyWhenPremerging(t *testing.T) {
	mgr := &BackupManager{}
	wc := NewInMemoryWorkingContext()
	dest := &BytesFileVersion{PathName: "f.txt", Content: []byte("original")}

	backup, err := mgr.MakeBackup(dest, false, wc)
	if err != nil {
		t.Fatalf("MakeBackup() error = %v", err)
	}

	if backup == nil || string(backup.Content) != "original" {
		t.Fatalf("MakeBackup() = %+v, want content \"original\"", backup)
	}

	if fileExists(wc.Filesystem(), origPath("f.txt")) {
		t.Error("backup file was written even though premergeFlag was false")
	}

	backup2, err := mgr.MakeBackup(dest, true, wc)
	if err != nil {
		t.Fatalf("MakeBackup() error = %v", err)
	}

	if !fileExists(wc.Filesystem(), origPath("f.txt")) {
		t.Error("backup file was not written when premergeFlag was true")
	}

	got, err := readFileContent(wc.Filesystem(), origPath("f.txt"))
	if err != nil {
		t.Fatalf("reading backup file: %v", err)
	}

	if string(got) != "original" || !backup2.InMemory {
		t.Errorf("backup file content = %q, InMemory = %v", got, backup2.InMemory)
	}
}

func TestMakeBackupMirrorsToDurableStore(t *testing.T) {
	durable := newMemDurableStore()
	mgr := &BackupManager{Durable: durable}
	wc := NewInMemoryWorkingContext()
	dest := &BytesFileVersion{PathName: "f.txt", Content: []byte("original"), FlagsStr: "x"}

	backup, err := mgr.MakeBackup(dest, true, wc)
	if err != nil {
		t.Fatalf("MakeBackup() error = %v", err)
	}

	content, flags, ok, err := durable.Get(backup.PhysicalPath)
	if err != nil || !ok {
		t.Fatalf("durable.Get() = (ok=%v, err=%v), want a stored record", ok, err)
	}

	if string(content) != "original" || flags != "x" {
		t.Errorf("durable record = (%q, %q), want (\"original\", \"x\")", content, flags)
	}
}

func TestRestoreRewritesDestination(t *testing.T) {
	mgr := &BackupManager{}
	wc := NewInMemoryWorkingContext()

	if err := writeFileContent(wc.Filesystem(), "f.txt", []byte("mutated")); err != nil {
		t.Fatalf("seeding destination: %v", err)
	}

	backup := &Backup{PhysicalPath: origPath("f.txt"), Content: []byte("original")}

	if err := mgr.Restore(wc, "f.txt", "", backup); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got, err := readFileContent(wc.Filesystem(), "f.txt")
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}

	if string(got) != "original" {
		t.Errorf("destination = %q, want %q", got, "original")
	}
}

func TestRestoreNilBackupIsNoOp(t *testing.T) {
	mgr := &BackupManager{}
	wc := NewInMemoryWorkingContext()

	if err := mgr.Restore(wc, "f.txt", "", nil); err != nil {
		t.Fatalf("Restore() with nil backup error = %v", err)
	}
}

func TestDiscardRemovesPhysicalAndDurableBackup(t *testing.T) {
	durable := newMemDurableStore()
	mgr := &BackupManager{Durable: durable}
	wc := NewInMemoryWorkingContext()
	dest := &BytesFileVersion{PathName: "f.txt", Content: []byte("original")}

	backup, err := mgr.MakeBackup(dest, true, wc)
	if err != nil {
		t.Fatalf("MakeBackup() error = %v", err)
	}

	if err := mgr.Discard(wc, backup); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}

	if fileExists(wc.Filesystem(), backup.PhysicalPath) {
		t.Error("backup file still exists after Discard")
	}

	if _, _, ok, _ := durable.Get(backup.PhysicalPath); ok {
		t.Error("durable record still exists after Discard")
	}
}

func TestDiscardNilBackupIsNoOp(t *testing.T) {
	mgr := &BackupManager{}
	wc := NewInMemoryWorkingContext()

	if err := mgr.Discard(wc, nil); err != nil {
		t.Fatalf("Discard() with nil backup error = %v", err)
	}
}

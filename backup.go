package filemerge

import "os"

// DurableStore is an optional secondary backup backend, satisfied by
// internal/sqlbackup.Store among others, for callers that need merge
// backups to survive beyond the working tree's own filesystem.
type DurableStore interface {
	Put(path string, content []byte, flags string) error
	Get(path string) (content []byte, flags string, ok bool, err error)
	Delete(path string) error
}

// BackupManager produces, restores and removes a content snapshot of the
// destination file, routed for in-memory vs on-disk working trees. When
// Durable is set, every write/discard is mirrored there too.
type BackupManager struct {
	Durable DurableStore
}

// origPath is the host's orig-path policy: the backup sits beside the
// destination with a ".orig" suffix.
func origPath(path string) string {
	return path + ".orig"
}

// MakeBackup snapshots dest before premerge writes. No backup is produced
// for an absent destination. The snapshot is only written to the working
// context's filesystem when premergeFlag is true, so a post-premerge retry
// does not clobber the original snapshot.
func (m *BackupManager) MakeBackup(dest FileVersion, premergeFlag bool, wc WorkingContext) (*Backup, error) {
	if dest.IsAbsent() {
		return nil, nil
	}

	content, err := dest.Data()
	if err != nil {
		return nil, err
	}

	backup := &Backup{
		PhysicalPath: origPath(dest.Path()),
		Content:      append([]byte(nil), content...),
		InMemory:     wc.IsInMemory(),
	}

	if premergeFlag {
		if err := writeFileContent(wc.Filesystem(), backup.PhysicalPath, backup.Content); err != nil {
			return nil, err
		}

		if m.Durable != nil {
			if err := m.Durable.Put(backup.PhysicalPath, backup.Content, dest.Flags()); err != nil {
				return nil, err
			}
		}
	}

	return backup, nil
}

// Restore rewrites destPath from backup, preserving destFlags.
func (m *BackupManager) Restore(wc WorkingContext, destPath, destFlags string, backup *Backup) error {
	if backup == nil {
		return nil
	}

	return writeFileWithFlags(wc.Filesystem(), destPath, backup.Content, destFlags)
}

// Discard removes the physical backup file. Called only on clean merges.
func (m *BackupManager) Discard(wc WorkingContext, backup *Backup) error {
	if backup == nil {
		return nil
	}

	err := wc.Filesystem().Remove(backup.PhysicalPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if m.Durable != nil {
		if err := m.Durable.Delete(backup.PhysicalPath); err != nil {
			return err
		}
	}

	return nil
}

package filemerge

import (
	"io"
	"strings"

	"gopkg.in/src-d/go-billy.v4"
)

func writeFileContent(fs billy.Filesystem, path string, content []byte) error {
	_ = fs.Remove(path)

	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(content)
	return err
}

// writeFileWithFlags writes content to path, creating a symlink instead of
// a regular file when flags contains "l" and the filesystem supports it.
func writeFileWithFlags(fs billy.Filesystem, path string, content []byte, flags string) error {
	if strings.Contains(flags, "l") {
		if symFs, ok := fs.(billy.Symlink); ok {
			_ = fs.Remove(path)
			return symFs.Symlink(string(content), path)
		}
	}

	return writeFileContent(fs, path, content)
}

func readFileContent(fs billy.Filesystem, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func fileExists(fs billy.Filesystem, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

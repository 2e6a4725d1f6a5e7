package filemerge

import (
	"os"
	"path/filepath"
	"strings"
)

// TempFileProducer writes the other and ancestor file bodies to uniquely
// named disk files for external tools. The caller is responsible for
// unlinking both on every exit path.
type TempFileProducer struct{}

// MakeTempPair creates "<basename>~base.<ext>" and "<basename>~other.<ext>"
// style temp files in the OS temp area, named after originalPath, holding
// ancestor's and other's content respectively.
func (TempFileProducer) MakeTempPair(originalPath string, ancestor, other FileVersion) (basePath, otherPath string, err error) {
	ext := filepath.Ext(originalPath)
	stem := strings.TrimSuffix(filepath.Base(originalPath), ext)

	ancestorData, err := ancestor.Data()
	if err != nil {
		return "", "", err
	}

	basePath, err = writeTempFile(stem+"~base*", ext, ancestorData)
	if err != nil {
		return "", "", err
	}

	otherData, err := other.Data()
	if err != nil {
		os.Remove(basePath)
		return "", "", err
	}

	otherPath, err = writeTempFile(stem+"~other*", ext, otherData)
	if err != nil {
		os.Remove(basePath)
		return "", "", err
	}

	return basePath, otherPath, nil
}

func writeTempFile(pattern, ext string, data []byte) (string, error) {
	f, err := os.CreateTemp("", pattern+ext)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	return f.Name(), nil
}

// Cleanup unlinks both temp files, ignoring missing-file errors.
func (TempFileProducer) Cleanup(basePath, otherPath string) {
	if basePath != "" {
		os.Remove(basePath)
	}
	if otherPath != "" {
		os.Remove(otherPath)
	}
}

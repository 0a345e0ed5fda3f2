package utils

import (
	"path/filepath"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// OutputPath derives the machine-code path from a source path by
// swapping the extension, so prog.asm becomes prog.hack next to the
// input.
func OutputPath(inPath, newExt string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return inPath + newExt
	}
	return strings.TrimSuffix(inPath, ext) + newExt
}

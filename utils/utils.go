package utils

import (
	"os"
	"path/filepath"
	"strings"
)

func FileExist(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}

	return !info.IsDir()
}

func CreateDirIfNotExist(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}

	return nil
}

// HasExtension reports whether fileName ends in ext, ignoring case
func HasExtension(fileName, ext string) bool {
	return strings.EqualFold(filepath.Ext(fileName), ext)
}

// Package fileurl provides small filesystem path helpers.
package fileurl

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// IsFile determines if the given path is a file.
func IsFile(path string) bool {
	return !IsDir(path)
}

// IsDir determines if the given path is a directory.
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist checks whether a file or directory exists.
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// IsPermission checks whether the path is denied by permission.
func IsPermission(dst string) bool {
	_, err := os.Stat(dst)
	return os.IsPermission(err)
}

// CreatePath creates the parent directory of dst if missing.
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// GetExePath returns the directory of the running executable.
func GetExePath() string {
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	res, _ := filepath.EvalSymlinks(filepath.Dir(exePath))
	return res
}

// PathSuffixCheckAdd appends suffix to path when it is not already there.
func PathSuffixCheckAdd(path string, suffix string) string {
	if !strings.HasSuffix(path, suffix) {
		path = path + suffix
	}
	return path
}

// IsAbsPath reports whether path is absolute, with Windows drive handling.
func IsAbsPath(path string) bool {
	if runtime.GOOS == "windows" {
		if len(path) >= 2 && path[1] == ':' {
			return true
		}
		return strings.HasPrefix(path, `\\`)
	}
	return filepath.IsAbs(path)
}

// GetAbsPath resolves path against root when path is relative.
func GetAbsPath(path string, root string) (string, error) {
	if IsAbsPath(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Abs(filepath.Join(root, path))
}

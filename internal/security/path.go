// Package security validates user-supplied filesystem paths before
// the export and upload commands touch them.
package security

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrAbsolutePath  = errors.New("absolute paths are not allowed")
	ErrReservedName  = errors.New("reserved filename not allowed")
	ErrHyphenPrefix  = errors.New("filename cannot start with hyphen")
)

var windowsReservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true,
	"com5": true, "com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true,
	"lpt5": true, "lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// ValidateExportPath accepts only relative paths that stay inside the
// working directory and avoid reserved or hostile filenames.
func ValidateExportPath(path string) error {
	if filepath.IsAbs(path) {
		return ErrAbsolutePath
	}

	if strings.Contains(path, "..") || strings.HasPrefix(filepath.Clean(path), "..") {
		return ErrPathTraversal
	}

	base := filepath.Base(filepath.Clean(path))
	if strings.HasPrefix(base, "-") {
		return ErrHyphenPrefix
	}

	stem := strings.TrimSuffix(strings.ToLower(base), filepath.Ext(base))
	if windowsReservedNames[stem] {
		return ErrReservedName
	}

	return nil
}

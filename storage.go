package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var errBadFilename = errors.New("invalid filename")

// fileStore keeps uploaded originals and annotated results in two flat
// directories. Stored names are prefixed with a per-request UUID so two
// uploads of "card.jpg" never overwrite each other.
type fileStore struct {
	uploadDir string
	resultDir string
}

// ensureDirs creates the upload and result directories.
func (fs fileStore) ensureDirs() error {
	for _, d := range []string{fs.uploadDir, fs.resultDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// newName derives the stored filename for an upload.
func (fs fileStore) newName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20, r == '/', r == ':':
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == ".." {
		base = "upload"
	}
	return uuid.NewString() + "_" + base
}

func (fs fileStore) uploadPath(name string) string { return filepath.Join(fs.uploadDir, name) }
func (fs fileStore) resultPath(name string) string { return filepath.Join(fs.resultDir, name) }

// checkName rejects anything that is not a bare file name.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errBadFilename
	}
	return nil
}

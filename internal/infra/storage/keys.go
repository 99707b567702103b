package storage

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// scratchKey returns a unique object name for an upload. Only a sane
// extension of the client name survives; the rest is a fresh UUID.
func scratchKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return uuid.NewString() + ext
}

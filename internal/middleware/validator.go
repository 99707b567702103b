package middleware

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Upload sanitization utilities

const defaultVideoMIME = "video/mp4"

// SanitizeFileName keeps only the base name of a client supplied file
// name with control characters removed. The result is used for display
// and extension lookup only, never as a storage path.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(SanitizeString(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// DetectVideoMIME picks the MIME type sent to the AI provider: the part's
// declared type when it is specific, otherwise the extension, otherwise
// the first bytes of the content.
func DetectVideoMIME(fileName, declared string, head []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); mt != "" {
		if mt, _, err := mime.ParseMediaType(mt); err == nil {
			return mt
		}
	}
	if len(head) > 0 {
		if mt, _, err := mime.ParseMediaType(http.DetectContentType(head)); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	return defaultVideoMIME
}

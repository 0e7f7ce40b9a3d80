package camera

import (
	"path/filepath"
	"strings"
)

// DefaultContentType is sent for any extension missing from the table.
const DefaultContentType = "image/*"

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// ContentTypeForExt maps a bare extension (no dot, case as given) to a media type.
func ContentTypeForExt(ext string) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return DefaultContentType
}

// ContentType returns the media type for an image path based on its extension.
func ContentType(path string) string {
	return ContentTypeForExt(extension(path))
}

// extension returns the text after the last dot of the file name. Dotfiles
// such as ".jpeg" have no extension.
func extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

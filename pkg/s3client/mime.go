package s3client

import (
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// GuessContentType determines a Content-Type for an upload. The extension
// table is tried first; unknown extensions fall back to content sniffing.
// Returns "" when nothing can be determined, letting S3 apply its default.
func GuessContentType(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return detected.String()
}

// File: /utils/upload.go
package utils

import (
	"mime/multipart"
	"path/filepath"
	"strings"
)

var allowedImageExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true}

// CheckImageUpload validates an uploaded image and returns its lower-cased extension.
func CheckImageUpload(fh *multipart.FileHeader) (string, *Rejection) {
	if fh == nil || fh.Filename == "" || fh.Size == 0 {
		return "", BadRequest("No file detected", "Invalid file", FlagImage)
	}
	name := filepath.Base(strings.ReplaceAll(fh.Filename, "\\", "/"))
	ext := filepath.Ext(name)
	if strings.TrimSuffix(name, ext) == "" {
		return "", BadRequest("Inadmissible file name", "Invalid file name", FlagImage)
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if !allowedImageExtensions[ext] {
		return "", BadRequest("Extension: .png, .jp(e)g", "Invalid file", FlagImage)
	}
	return ext, nil
}

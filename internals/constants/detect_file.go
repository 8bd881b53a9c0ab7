package constants

import (
	"path/filepath"
	"strings"
)

// Document type values stored on project_documents.file_type
const (
	FileTypeDocument     = "document"
	FileTypeImage        = "image"
	FileTypePresentation = "presentation"
	FileTypeSpreadsheet  = "spreadsheet"
	FileTypeOther        = "other"
)

var DocumentFileTypes = []string{
	FileTypeDocument,
	FileTypeImage,
	FileTypePresentation,
	FileTypeSpreadsheet,
	FileTypeOther,
}

// imageExtensions is the fixed set used for image classification.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".tiff": {},
	".webp": {},
}

func IsImageExtension(filename string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// DetectFileTypeFromExt classifies a filename when the uploader did not
// pick a type explicitly: image extensions map to "image", everything
// else to "document".
func DetectFileTypeFromExt(filename string) string {
	if IsImageExtension(filename) {
		return FileTypeImage
	}
	return FileTypeDocument
}

func IsValidFileType(t string) bool {
	for _, v := range DocumentFileTypes {
		if v == t {
			return true
		}
	}
	return false
}

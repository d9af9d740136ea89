package service

import (
	"net/http"
	"path/filepath"
	"strings"
)

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
}

// DetectContentType keeps a declared type unless it is missing or generic,
// then tries the file extension and finally sniffs the content.
func DetectContentType(fileName, declared string, data []byte) string {
	declared = strings.TrimSpace(strings.Split(declared, ";")[0])
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if ct, ok := imageTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}

package util

import (
	"net/http"
	"path/filepath"
	"strings"
)

// SniffImageMIME: MIME по сигнатуре; "" если это не картинка.
func SniffImageMIME(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	mime := http.DetectContentType(b)
	if !strings.HasPrefix(mime, "image/") {
		return ""
	}
	return mime
}

// ExtForMIME maps an image MIME type to a file extension, ".png" by default.
func ExtForMIME(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// MIMEForPath угадывает MIME по расширению файла (для загрузки базового фото).
func MIMEForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

package utils

// IsImageMimeType reports whether the mime type renders as a still image.
// Anything else attached to a request is treated as video by the clients.
func IsImageMimeType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg",
		"image/png",
		"image/gif",
		"image/bmp",
		"image/webp",
		"image/svg+xml",
		"image/tiff",
		"image/heic",
		"image/heif":
		return true
	}
	return false
}

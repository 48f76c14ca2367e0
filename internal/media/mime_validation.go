package media

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

func parseMimeType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}

// resolveImageType accepts a declared image type from the allow list. A
// missing or generic declaration falls back to sniffing the body.
func resolveImageType(declared string, body []byte) (string, error) {
	mediaType, err := parseMimeType(declared)
	if err != nil || mediaType == "application/octet-stream" || mediaType == "image/*" {
		mediaType = strings.ToLower(http.DetectContentType(body))
		if idx := strings.IndexByte(mediaType, ';'); idx >= 0 {
			mediaType = mediaType[:idx]
		}
	}
	for _, candidate := range allowedImageTypes {
		if candidate == mediaType {
			return mediaType, nil
		}
	}
	return "", fmt.Errorf("only %s images are allowed", humanReadableList([]string{"PNG", "JPEG", "WebP", "GIF"}))
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}

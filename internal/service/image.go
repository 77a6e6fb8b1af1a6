package service

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrInvalidImage is returned for uploads the model should never see.
var ErrInvalidImage = errors.New("invalid image")

// extension -> MIME type sent with the image
var allowedImageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

const defaultImageMIME = "image/jpeg"

// ValidateImage checks size and extension and returns the MIME type to send.
// The bytes are not inspected beyond picking a MIME type; the model gets
// them as they are.
func ValidateImage(data []byte, filename string, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: the file is empty", ErrInvalidImage)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: the file is larger than %d MB", ErrInvalidImage, maxBytes>>20)
	}

	mime := defaultImageMIME
	if filename != "" {
		extMIME, ok := allowedImageExt[strings.ToLower(filepath.Ext(filename))]
		if !ok {
			return "", fmt.Errorf("%w: only JPG and PNG files are accepted", ErrInvalidImage)
		}
		mime = extMIME
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		mime = sniffed
	}
	return mime, nil
}

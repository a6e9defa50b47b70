package services

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"chatline/errors"
)

// decodeImagePayload accepts a base64 image, with or without a data-URL
// prefix, and returns the raw bytes plus the sniffed content type. The
// declared type in a data URL is ignored: only the sniffed bytes decide.
func decodeImagePayload(payload string) ([]byte, string, error) {
	if idx := strings.Index(payload, ";base64,"); idx != -1 {
		payload = payload[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.ErrInvalidImage
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, "", errors.ErrInvalidImage
	}
	return data, detected.String(), nil
}

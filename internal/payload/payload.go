// Package payload implements the self-describing image representation
// used throughout the session: a data URI embedding the MIME type and
// base64-encoded bytes, directly usable as a display source and as an
// export artifact.
package payload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// ExportFilename is the fixed name offered for exported images.
const ExportFilename = "space-ai-export.png"

var (
	ErrNotDataURI     = errors.New("payload is not a data URI")
	ErrNotImage       = errors.New("file is not a recognized image")
	ErrEmptyPayload   = errors.New("payload is empty")
	ErrInvalidPayload = errors.New("payload has malformed base64 data")
)

// Payload is a "data:<mime>;base64,<data>" string.
type Payload string

// Encode wraps raw image bytes into a payload.
func Encode(data []byte, mimeType string) Payload {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return Payload(fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)))
}

// Decode splits a payload back into its MIME type and raw bytes.
func (p Payload) Decode() (mimeType string, data []byte, err error) {
	s := string(p)
	if s == "" {
		return "", nil, ErrEmptyPayload
	}

	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURI
	}

	header, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	mimeType = strings.TrimSuffix(header, ";base64")

	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return mimeType, data, nil
}

// MIMEType returns the payload's MIME tag without decoding the data.
func (p Payload) MIMEType() string {
	mime, _, err := p.Decode()
	if err != nil {
		return ""
	}
	return mime
}

// FromFile reads a local image file and encodes it as a payload. The
// MIME type is sniffed from the content, not the extension.
func FromFile(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}
	return FromBytes(data)
}

// FromBytes encodes raw uploaded bytes, rejecting non-image content.
func FromBytes(data []byte) (Payload, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mimeType)
	}
	return Encode(data, mimeType), nil
}

// WriteFile decodes the payload and writes the raw bytes to path.
func (p Payload) WriteFile(path string) error {
	_, data, err := p.Decode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

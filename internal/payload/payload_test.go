package payload

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// pngHeader is enough for content sniffing to call it image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestEncodeDecode(t *testing.T) {
	data := []byte("raw image bytes")
	p := Encode(data, "image/jpeg")

	mime, decoded, err := p.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("Decode() mime = %q, want image/jpeg", mime)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("Decode() data = %q, want %q", decoded, data)
	}
}

func TestEncode_DefaultMIME(t *testing.T) {
	p := Encode([]byte("x"), "")
	if p.MIMEType() != "image/png" {
		t.Errorf("MIMEType() = %q, want image/png", p.MIMEType())
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		wantErr error
	}{
		{"empty", Payload(""), ErrEmptyPayload},
		{"not a data URI", Payload("https://example.com/x.png"), ErrNotDataURI},
		{"no comma", Payload("data:image/png;base64"), ErrNotDataURI},
		{"bad base64", Payload("data:image/png;base64,!!!"), ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.payload.Decode()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromBytes(t *testing.T) {
	p, err := FromBytes(pngHeader)
	if err != nil {
		t.Fatalf("FromBytes() error = %v", err)
	}
	if p.MIMEType() != "image/png" {
		t.Errorf("MIMEType() = %q, want image/png", p.MIMEType())
	}
}

func TestFromBytes_RejectsNonImage(t *testing.T) {
	_, err := FromBytes([]byte("just some text, clearly not pixels"))
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("FromBytes() error = %v, want ErrNotImage", err)
	}
}

func TestFromFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	if err := os.WriteFile(src, pngHeader, 0644); err != nil {
		t.Fatal(err)
	}

	p, err := FromFile(src)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}

	dest := filepath.Join(dir, "out.png")
	if err := p.WriteFile(dest); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	written, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(written, pngHeader) {
		t.Error("WriteFile() content does not match the source bytes")
	}
}

func TestFromFile_Missing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Error("FromFile() expected error for missing file")
	}
}

package security

import (
	"errors"
	"testing"
)

func TestValidateExportPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"simple filename", "image.png", nil},
		{"nested relative", "exports/image.png", nil},
		{"default export name", "space-ai-export.png", nil},
		{"absolute path", "/etc/passwd", ErrAbsolutePath},
		{"parent traversal", "../image.png", ErrPathTraversal},
		{"embedded traversal", "exports/../../image.png", ErrPathTraversal},
		{"hyphen prefix", "-rf.png", ErrHyphenPrefix},
		{"reserved name", "con.png", ErrReservedName},
		{"reserved name upper", "NUL.png", ErrReservedName},
		{"reserved com port", "com1.png", ErrReservedName},
		{"reserved-like but fine", "console.png", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExportPath(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExportPath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/spaceai/spaceai/internal/payload"
)

// Workspace mirrors every generated image to a local directory so the
// session gallery survives on disk even though history itself is
// in-memory only.
type Workspace struct {
	dir string
}

func NewWorkspace(dir string) (*Workspace, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Save writes the payload under a fresh unique filename and returns
// the path.
func (w *Workspace) Save(p payload.Payload) (string, error) {
	mimeType, _, err := p.Decode()
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.dir, uuid.New().String()+extensionFor(mimeType))
	if err := p.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
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

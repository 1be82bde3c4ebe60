package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"persona-selfie/api/internal/util"

	"github.com/google/uuid"
)

var ErrEmpty = errors.New("empty image data")

// Artifact: сохранённый файл и его относительный URL.
type Artifact struct {
	Name string // <uuid>.<ext>
	Path string // URL path, e.g. /static/images/<name>
	File string // path on disk
}

// Store writes generated images under Dir; files are served from URLPrefix.
type Store struct {
	Dir       string
	URLPrefix string
}

func New(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &Store{Dir: dir, URLPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// Save writes data under a fresh random name. Existing files are never replaced.
func (s *Store) Save(data []byte) (Artifact, error) {
	if len(data) == 0 {
		return Artifact{}, ErrEmpty
	}
	name := uuid.NewString() + util.ExtForMIME(util.SniffImageMIME(data))
	file := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Artifact{}, fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(file)
		return Artifact{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(file)
		return Artifact{}, fmt.Errorf("close %s: %w", name, err)
	}

	return Artifact{Name: name, Path: path.Join(s.URLPrefix, name), File: file}, nil
}

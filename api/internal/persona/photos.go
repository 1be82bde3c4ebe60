package persona

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrBaseImageMissing = errors.New("base image not found")

// Extensions: порядок важен: берём первое совпадение.
var Extensions = []string{".jpeg", ".jpg", ".png", ".webp"}

// Photos resolves <Dir>/<id><ext> against an ordered extension list.
type Photos struct {
	Dir        string
	Extensions []string
}

func NewPhotos(dir string) *Photos {
	return &Photos{Dir: dir, Extensions: Extensions}
}

func (p *Photos) Find(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: bad id %q", ErrBaseImageMissing, id)
	}
	for _, ext := range p.Extensions {
		path := filepath.Join(p.Dir, id+ext)
		fi, err := os.Stat(path)
		if err == nil && fi.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrBaseImageMissing, id, p.Dir)
}

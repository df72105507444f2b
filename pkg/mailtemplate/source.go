package mailtemplate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// FragmentSource returns the raw markdown of a named fragment.
// Implementations must return an error wrapping ErrTemplateNotFound when the
// fragment does not exist.
type FragmentSource interface {
	Get(name string) (string, error)
}

// FragmentSourceFunc adapts a plain function to FragmentSource.
type FragmentSourceFunc func(name string) (string, error)

func (f FragmentSourceFunc) Get(name string) (string, error) { return f(name) }

type fsSource struct {
	fsys fs.FS
}

// FSSource serves fragments from "<name>.md" files in fsys.
func FSSource(fsys fs.FS) FragmentSource {
	return &fsSource{fsys: fsys}
}

// DirSource serves fragments from "<name>.md" files in dir.
func DirSource(dir string) FragmentSource {
	return &fsSource{fsys: os.DirFS(dir)}
}

func (s *fsSource) Get(name string) (string, error) {
	file := path.Clean(name) + ".md"
	if !fs.ValidPath(file) {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
		}
		return "", errors.Join(ErrRenderFailed, err)
	}
	return string(data), nil
}

// MapSource serves fragments from an in-memory map keyed by fragment name.
type MapSource map[string]string

func (m MapSource) Get(name string) (string, error) {
	text, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return text, nil
}

// Package media accumulates the files attached to a post before it is sent.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"connectly/models"
)

// MaxFiles is the attachment cap the server enforces as well.
const MaxFiles = models.MaxPostMedia

var (
	ErrTooManyFiles = fmt.Errorf("maximum %d files allowed", MaxFiles)
	ErrEmptyPost    = errors.New("post can not be empty")
)

// File is one selected attachment. Open may be called more than once.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FromPath selects a file on disk.
func FromPath(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FromBytes selects an in-memory file.
func FromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Selection is append-only apart from Remove and Reset. The zero value is an
// empty selection.
type Selection struct {
	files []File
}

// Add appends a batch. A batch that would push the selection past MaxFiles
// is rejected whole and the current selection is kept.
func (s *Selection) Add(batch ...File) error {
	if len(s.files)+len(batch) > MaxFiles {
		return ErrTooManyFiles
	}
	s.files = append(s.files, batch...)
	return nil
}

func (s *Selection) Remove(i int) error {
	if i < 0 || i >= len(s.files) {
		return fmt.Errorf("no selected file at index %d", i)
	}
	s.files = append(s.files[:i:i], s.files[i+1:]...)
	return nil
}

func (s *Selection) Reset() { s.files = nil }

func (s *Selection) Len() int { return len(s.files) }

// Files returns a copy of the selection in the order it was built.
func (s *Selection) Files() []File {
	out := make([]File, len(s.files))
	copy(out, s.files)
	return out
}

// Validate reports whether a post with content and this selection may be
// submitted.
func (s *Selection) Validate(content string) error {
	if strings.TrimSpace(content) == "" && len(s.files) == 0 {
		return ErrEmptyPost
	}
	return nil
}

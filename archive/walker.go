// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/encoding"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk, name is the entry name (decoded when code page was requested) and file
// is the zip.File structure for the entry. If an error is returned, processing
// stops.
type WalkFunc func(archive, name string, file *zip.File) error

// Walker visits regular files in zip archive in natural order of their names.
type Walker struct {
	// Prefix limits walk to entries whose (decoded) names start with it.
	Prefix string
	// Extension, when not empty, limits walk to entries with this extension
	// (case insensitive).
	Extension string
	// CodePage is used to decode names of entries not flagged as UTF-8.
	CodePage encoding.Encoding
}

// Walk opens archive and calls walkFn for every matching entry. Entries with
// path traversal components ("..") or absolute paths abort the walk.
func (w Walker) Walk(archive string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	type item struct {
		name string
		file *zip.File
	}

	items := make([]item, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name, err := w.decodeName(f)
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", f.FileHeader.Name, err)
		}
		if !w.match(name) {
			continue
		}
		items = append(items, item{name: name, file: f})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return natural.Less(items[i].name, items[j].name)
	})

	for _, it := range items {
		if err := walkFn(archive, it.name, it.file); err != nil {
			return err
		}
	}
	return nil
}

// Walk walks all files in the archive with names starting with prefix.
func Walk(archive, prefix string, walkFn WalkFunc) error {
	return Walker{Prefix: prefix}.Walk(archive, walkFn)
}

func (w Walker) decodeName(f *zip.File) (string, error) {
	if w.CodePage == nil || !f.FileHeader.NonUTF8 {
		return f.FileHeader.Name, nil
	}
	// since zip "standard" does not define file name encoding old archives
	// may need archaic code page
	return w.CodePage.NewDecoder().String(f.FileHeader.Name)
}

func (w Walker) match(name string) bool {
	if !strings.HasPrefix(name, w.Prefix) {
		return false
	}
	return len(w.Extension) == 0 || strings.EqualFold(path.Ext(name), w.Extension)
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

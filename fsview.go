package sdfat

import (
	"io"
	"io/fs"
	"strings"
	"time"
)

// FS returns a read-only io/fs view of the mounted volume. Paths use the
// io/fs convention: slash-separated, "." for the root, matched against the
// formatted 8.3 names case-insensitively. The view reads through to the
// device, so entries deleted after mounting disappear from it as well.
func (v *Volume) FS() fs.FS {
	return &fsView{v: v}
}

type fsView struct {
	v *Volume
}

func (f *fsView) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &dirFile{view: f, index: RootParent}, nil
	}

	index := f.resolve(name)
	if index < 0 {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	e := &f.v.entries[index]
	if e.Type == TypeDirectory {
		return &dirFile{view: f, index: index}, nil
	}

	content, err := f.v.readContent(e)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &memFile{info: e.Info(), content: content}, nil
}

// resolve walks the entry table from the root along the path components
// and returns the index of the named entry, or -1.
func (f *fsView) resolve(name string) int {
	parent := RootParent
components:
	for _, component := range strings.Split(name, "/") {
		component = strings.ToUpper(component)
		for i := range f.v.entries {
			e := &f.v.entries[i]
			if e.InUse && e.Parent == parent && FormatName(e.Name) == component {
				parent = i
				continue components
			}
		}
		return -1
	}
	return parent
}

// memFile is a file whose content was already collected from the chain.
type memFile struct {
	info    fs.FileInfo
	content []byte
	offset  int
}

func (m *memFile) Stat() (fs.FileInfo, error) {
	return m.info, nil
}

func (m *memFile) Read(p []byte) (int, error) {
	if m.offset >= len(m.content) {
		return 0, io.EOF
	}
	n := copy(p, m.content[m.offset:])
	m.offset += n
	return n, nil
}

func (m *memFile) Close() error {
	m.content = nil
	return nil
}

// dirFile lists the children of one directory entry, RootParent for the
// root directory itself.
type dirFile struct {
	view   *fsView
	index  int
	offset int
}

func (d *dirFile) Stat() (fs.FileInfo, error) {
	if d.index == RootParent {
		return rootInfo{}, nil
	}
	return d.view.v.entries[d.index].Info(), nil
}

func (d *dirFile) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name(), Err: fs.ErrInvalid}
}

func (d *dirFile) Close() error {
	return nil
}

// ReadDir lists up to n children, continuing where the previous call left
// off, as io/fs specifies. n <= 0 lists everything.
func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	var children []fs.DirEntry
	for i := range d.view.v.entries {
		e := &d.view.v.entries[i]
		if e.InUse && e.Parent == d.index {
			children = append(children, dirEntry{entry: *e})
		}
	}

	if d.offset >= len(children) {
		if n <= 0 {
			return nil, nil
		}
		return nil, io.EOF
	}

	children = children[d.offset:]
	if n > 0 && len(children) > n {
		children = children[:n]
	}
	d.offset += len(children)
	return children, nil
}

func (d *dirFile) name() string {
	if d.index == RootParent {
		return "."
	}
	return FormatName(d.view.v.entries[d.index].Name)
}

type dirEntry struct {
	entry Entry
}

func (d dirEntry) Name() string {
	return FormatName(d.entry.Name)
}

func (d dirEntry) IsDir() bool {
	return d.entry.Type == TypeDirectory
}

func (d dirEntry) Type() fs.FileMode {
	if d.IsDir() {
		return fs.ModeDir
	}
	return 0
}

func (d dirEntry) Info() (fs.FileInfo, error) {
	return d.entry.Info(), nil
}

// rootInfo describes the root directory, which has no entry of its own.
type rootInfo struct{}

func (rootInfo) Name() string       { return "." }
func (rootInfo) Size() int64        { return 0 }
func (rootInfo) Mode() fs.FileMode  { return fs.ModeDir }
func (rootInfo) ModTime() time.Time { return time.Time{} }
func (rootInfo) IsDir() bool        { return true }
func (rootInfo) Sys() interface{}   { return nil }

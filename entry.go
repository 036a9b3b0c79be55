package sdfat

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/sdfat/sdfat/checkpoint"
)

// EntryType classifies a directory entry by its attribute bits.
type EntryType int

const (
	// TypeVolumeLabel entries carry the volume name. They are classified
	// during the scan but not recorded in the entry table.
	TypeVolumeLabel EntryType = iota
	// TypeDirectory entries start a subdirectory cluster chain.
	TypeDirectory
	// TypeFile entries describe regular files.
	TypeFile
)

// RootParent marks an entry that lives directly in the root directory.
const RootParent = -1

// Entry is one recorded directory entry. Entries live in the table owned by
// the Volume they were scanned into; Parent is an index into that same
// table, RootParent for entries of the root directory.
type Entry struct {
	Name         [11]byte
	Type         EntryType
	Attribute    byte
	StartCluster uint32
	Size         uint32
	WriteTime    uint16
	WriteDate    uint16
	Parent       int
	InUse        bool
}

// ErrBadName is returned for names that do not fit the 8.3 format.
var ErrBadName = errors.New("name does not fit the 8.3 format")

// Name83 packs a conventional name like "HELLO.TXT" into the space-padded
// 11-byte form directory entries use. The name is uppercased; at most 8
// base characters and 3 extension characters fit.
func Name83(name string) ([11]byte, error) {
	var packed [11]byte
	for i := range packed {
		packed[i] = ' '
	}

	name = strings.ToUpper(name)
	base := name
	ext := ""
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		base, ext = name[:dot], name[dot+1:]
	}
	if base == "" || len(base) > 8 || len(ext) > 3 || strings.ContainsAny(name, "/\\") {
		return packed, checkpoint.From(ErrBadName)
	}

	copy(packed[:8], base)
	copy(packed[8:], ext)
	return packed, nil
}

// FormatName renders the 11 raw name bytes back into the conventional
// "NAME.EXT" form, trimming the space padding.
func FormatName(name [11]byte) string {
	base := strings.TrimRight(string(name[:8]), " ")
	ext := strings.TrimRight(string(name[8:]), " ")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// Info adapts the entry to an os.FileInfo.
func (e *Entry) Info() os.FileInfo {
	return entryFileInfo{entry: *e}
}

type entryFileInfo struct {
	entry Entry
}

func (e entryFileInfo) Name() string {
	return FormatName(e.entry.Name)
}

func (e entryFileInfo) Size() int64 {
	return int64(e.entry.Size)
}

func (e entryFileInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir
	}
	return 0
}

// ModTime combines the entry's FAT write date and time stamps. A zero date
// stamp yields time.Time{} so time.Time.IsZero() keeps working.
func (e entryFileInfo) ModTime() time.Time {
	d := parseDate(e.entry.WriteDate)
	if d.IsZero() {
		return time.Time{}
	}
	t := parseTime(e.entry.WriteTime)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func (e entryFileInfo) IsDir() bool {
	return e.entry.Type == TypeDirectory
}

func (e entryFileInfo) Sys() interface{} {
	return e.entry
}

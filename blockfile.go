package sdfat

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/sdfat/sdfat/checkpoint"
	"github.com/spf13/afero"
)

// These errors may occur while accessing an image file.
var (
	ErrReadImage  = errors.New("could not read block from image")
	ErrWriteImage = errors.New("could not write block to image")
)

// FileDevice adapts a seekable image file to the Device interface so the
// same filesystem code runs against a card or against an image on the host.
// The mutex serializes seek+read pairs, mirroring the card's one command
// sequence at a time.
type FileDevice struct {
	mu  sync.Mutex
	rws io.ReadWriteSeeker
}

// NewFileDevice returns a Device backed by rws. The caller keeps ownership
// of the underlying file and closes it after unmounting.
func NewFileDevice(rws io.ReadWriteSeeker) *FileDevice {
	return &FileDevice{rws: rws}
}

// OpenImage opens an image file for read-write access on the given afero
// filesystem and wraps it as a FileDevice. Closing is the caller's job via
// the returned file.
func OpenImage(fs afero.Fs, path string) (*FileDevice, afero.File, error) {
	f, err := fs.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, checkpoint.Wrap(err, ErrReadImage)
	}
	return NewFileDevice(f), f, nil
}

// ReadBlock reads the 512-byte block at the given absolute block address.
func (d *FileDevice) ReadBlock(address uint32, blk *Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.rws.Seek(int64(address)*BlockSize, io.SeekStart); err != nil {
		return checkpoint.Wrap(err, ErrReadImage)
	}
	if _, err := io.ReadFull(d.rws, blk[:]); err != nil {
		return checkpoint.Wrap(err, ErrReadImage)
	}
	return nil
}

// WriteBlock writes the 512-byte block at the given absolute block address.
func (d *FileDevice) WriteBlock(address uint32, blk *Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.rws.Seek(int64(address)*BlockSize, io.SeekStart); err != nil {
		return checkpoint.Wrap(err, ErrWriteImage)
	}
	if _, err := d.rws.Write(blk[:]); err != nil {
		return checkpoint.Wrap(err, ErrWriteImage)
	}
	return nil
}

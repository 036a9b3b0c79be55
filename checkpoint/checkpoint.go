// Package checkpoint decorates errors with caller information so that a
// failure deep inside the filesystem or card driver still tells you which
// call site it passed through. Every error attached to a checkpoint stays
// reachable through errors.Is and errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From wraps err in a checkpoint recording the caller's file and line.
// It returns nil for a nil err. io.EOF and io.ErrUnexpectedEOF pass through
// untouched because callers compare them by identity.
func From(err error) error {
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		return err
	}
	return newCheckpoint(nil, err)
}

// Wrap attaches mark to cause and records the caller's file and line.
// It returns nil if cause is nil, so it can be used unconditionally on the
// return path. The typical use is a package-level sentinel as mark:
//
//	var ErrReadFAT = errors.New("could not read the FAT")
//
//	if err := v.dev.ReadBlock(sector, &blk); err != nil {
//		return checkpoint.Wrap(err, ErrReadFAT)
//	}
//
// Afterwards both errors.Is(err, ErrReadFAT) and errors.Is against the
// device's own error hold.
func Wrap(cause, mark error) error {
	if cause == nil || cause == io.EOF {
		return cause
	}
	return newCheckpoint(cause, mark)
}

func newCheckpoint(cause, mark error) error {
	c := &checkpoint{cause: cause, mark: mark}
	// Caller of From/Wrap, not of newCheckpoint.
	if _, file, line, ok := runtime.Caller(2); ok {
		c.site = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return c
}

type checkpoint struct {
	mark  error // error describing this checkpoint, may be nil for From
	cause error // wrapped error, nil when created by From
	site  string
}

func (c *checkpoint) Error() string {
	var b strings.Builder

	site := c.site
	if site == "" {
		site = "unknown"
	}
	fmt.Fprintf(&b, "at %s", site)
	if c.mark != nil {
		fmt.Fprintf(&b, ": %v", c.mark)
	}
	if c.cause != nil {
		if _, nested := c.cause.(*checkpoint); nested {
			fmt.Fprintf(&b, "\n%v", c.cause)
		} else {
			fmt.Fprintf(&b, ": %v", c.cause)
		}
	}
	return b.String()
}

func (c *checkpoint) Unwrap() error {
	if c.cause != nil {
		return c.cause
	}
	return c.mark
}

func (c *checkpoint) Is(target error) bool {
	return c.mark != nil && errors.Is(c.mark, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.mark != nil && errors.As(c.mark, target)
}

package sdfat

import (
	"errors"

	"github.com/sdfat/sdfat/addr"
	"github.com/sdfat/sdfat/checkpoint"
)

// ErrReadFile may occur while reading file content.
var ErrReadFile = errors.New("could not read file completely")

// ReadFile returns the complete content of the file with the given 11-byte
// name at the given root-ward path (see DeleteFile for the path
// convention). It returns found == false without error when no entry
// matches.
func (v *Volume) ReadFile(name [11]byte, path ...[11]byte) (content []byte, found bool, err error) {
	target := v.findFile(name, path...)
	if target < 0 {
		return nil, false, nil
	}
	content, err = v.readContent(&v.entries[target])
	return content, true, err
}

// ReadFilePath is a convenience wrapper around ReadFile taking a
// conventional slash-separated path.
func (v *Volume) ReadFilePath(path string) ([]byte, bool, error) {
	name, reversed, err := splitPath(path)
	if err != nil {
		return nil, false, err
	}
	return v.ReadFile(name, reversed...)
}

// readContent walks the entry's cluster chain through the FAT and collects
// the file bytes, bounded by the entry's recorded size.
func (v *Volume) readContent(e *Entry) ([]byte, error) {
	if e.StartCluster < 2 || e.Size == 0 {
		// Never-allocated chain, the file is empty.
		return []byte{}, nil
	}

	content := make([]byte, 0, e.Size)
	remaining := int(e.Size)
	cluster := e.StartCluster

	var blk Block
	for remaining > 0 {
		block := v.clusterToBlock(cluster)
		for i := 0; i < int(v.volumeID.SectorsPerCluster) && remaining > 0; i++ {
			if err := v.dev.ReadBlock(addr.Add(block, uint32(i)), &blk); err != nil {
				return nil, checkpoint.Wrap(err, ErrReadFile)
			}
			n := remaining
			if n > BlockSize {
				n = BlockSize
			}
			content = append(content, blk[:n]...)
			remaining -= n
		}
		if remaining == 0 {
			break
		}

		next, end, err := v.nextInChain(cluster)
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrReadFile)
		}
		if end {
			// The chain ended before the recorded size was reached.
			return content, checkpoint.From(ErrReadFile)
		}
		cluster = next
	}

	return content, nil
}

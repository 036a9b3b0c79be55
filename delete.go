package sdfat

import (
	"errors"
	"strings"

	"github.com/sdfat/sdfat/addr"
	"github.com/sdfat/sdfat/checkpoint"
)

// ErrWriteDirectory may occur while tombstoning a directory slot.
var ErrWriteDirectory = errors.New("could not write directory block")

// findFile locates a file entry by name and root-ward directory path:
// path[0] is the immediately enclosing directory, path[len-1] sits in the
// root. An empty path matches only files directly in the root. It returns
// the entry table index or -1.
func (v *Volume) findFile(name [11]byte, path ...[11]byte) int {
candidates:
	for i := range v.entries {
		e := &v.entries[i]
		if !e.InUse || e.Type != TypeFile || e.Name != name {
			continue
		}

		// Walk the parent links exactly len(path) steps; each visited
		// parent must carry the matching path component and the walk must
		// end at the root, no sooner and no later.
		parent := e.Parent
		for _, component := range path {
			if parent == RootParent {
				continue candidates
			}
			if v.entries[parent].Name != component {
				continue candidates
			}
			parent = v.entries[parent].Parent
		}
		if parent != RootParent {
			continue
		}
		return i
	}
	return -1
}

// DeleteFile deletes the file with the given 11-byte name whose absolute
// location matches path (root-ward order, see findFile). It frees the
// file's cluster chain in FAT copy #1 and tombstones the on-disk directory
// slot. It returns false without error when no entry matches, and also
// when the on-disk directory no longer contains the slot the entry table
// describes.
func (v *Volume) DeleteFile(name [11]byte, path ...[11]byte) (bool, error) {
	target := v.findFile(name, path...)
	if target < 0 {
		return false, nil
	}
	e := &v.entries[target]

	// Clusters 0 and 1 mean the file never had a chain allocated.
	if e.StartCluster >= 2 {
		cluster := e.StartCluster
		for {
			next, end, err := v.nextInChain(cluster)
			if err != nil {
				return false, err
			}
			if err := v.freeCluster(cluster); err != nil {
				return false, err
			}
			if end {
				break
			}
			cluster = next
		}
	}

	found, err := v.tombstoneSlot(e)
	if err != nil {
		return false, err
	}
	if found {
		e.InUse = false
	}
	return found, nil
}

// tombstoneSlot re-scans the enclosing directory on disk for the slot
// matching the entry's attribute byte, name and starting cluster, marks it
// deleted and clears the high cluster bytes, then writes the block back.
func (v *Volume) tombstoneSlot(e *Entry) (bool, error) {
	var startBlock uint32
	if e.Parent == RootParent {
		startBlock = v.clusterToBlock(v.volumeID.RootCluster)
	} else {
		startBlock = v.clusterToBlock(v.entries[e.Parent].StartCluster)
	}

	var blk Block
	address := startBlock
	for {
		if err := v.dev.ReadBlock(address, &blk); err != nil {
			return false, checkpoint.Wrap(err, ErrReadDevice)
		}

		for slot := 0; slot < entriesPerBlock; slot++ {
			raw := blk[slot*entrySize : (slot+1)*entrySize]

			if raw[0] == slotEndOfDirectory {
				// The directory on disk no longer matches the entry table.
				return false, nil
			}
			if !relevantSlot(raw) {
				continue
			}
			if !slotMatches(raw, e) {
				continue
			}

			raw[0] = slotDeleted
			raw[20] = 0
			raw[21] = 0
			if err := v.dev.WriteBlock(address, &blk); err != nil {
				return false, checkpoint.Wrap(err, ErrWriteDirectory)
			}
			return true, nil
		}

		address = addr.Add(address, 1)
	}
}

// slotMatches reports whether a raw 32-byte slot describes the same entry
// the table holds: attribute byte, all 11 name bytes and both halves of
// the starting cluster must agree.
func slotMatches(raw []byte, e *Entry) bool {
	if raw[11] != e.Attribute {
		return false
	}
	for i := 0; i < 11; i++ {
		if raw[i] != e.Name[i] {
			return false
		}
	}
	hi := uint32(raw[20]) | uint32(raw[21])<<8
	lo := uint32(raw[26]) | uint32(raw[27])<<8
	return hi<<16|lo == e.StartCluster
}

// DeleteFilePath is a convenience wrapper around DeleteFile taking a
// conventional slash-separated path like "LOGS/OLD/TRACE.TXT". Components
// are converted to their 8.3 form and reordered root-ward.
func (v *Volume) DeleteFilePath(path string) (bool, error) {
	name, reversed, err := splitPath(path)
	if err != nil {
		return false, err
	}
	return v.DeleteFile(name, reversed...)
}

// splitPath converts "A/B/C.TXT" into the raw name of C.TXT and the
// enclosing directories in root-ward order ("B", "A").
func splitPath(path string) ([11]byte, [][11]byte, error) {
	components := strings.Split(strings.Trim(path, "/"), "/")

	name, err := Name83(components[len(components)-1])
	if err != nil {
		return name, nil, err
	}

	dirs := components[:len(components)-1]
	reversed := make([][11]byte, 0, len(dirs))
	for i := len(dirs) - 1; i >= 0; i-- {
		dir, err := Name83(dirs[i])
		if err != nil {
			return name, nil, err
		}
		reversed = append(reversed, dir)
	}
	return name, reversed, nil
}

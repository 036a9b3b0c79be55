// Package sdfat reads and mutates FAT32 filesystems on single-block storage
// devices, typically an SD card driven over SPI (see the sdcard subpackage)
// or a raw image file. Mounting parses the Master Boot Record and the
// Volume ID and scans the whole directory tree into a bounded entry table;
// files can then be read or deleted by 8.3 name and directory path.
package sdfat

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/sdfat/sdfat/addr"
	"github.com/sdfat/sdfat/checkpoint"
)

// These errors may occur while mounting and scanning a volume.
var (
	ErrReadDevice = errors.New("could not read block from device")
	ErrTableFull  = errors.New("directory entry table capacity exceeded")
	ErrTooDeep    = errors.New("directory tree exceeds the depth bound")
)

const (
	defaultEntryCapacity = 100
	defaultMaxDepth      = 16
)

// Volume is a mounted FAT32 filesystem session. All geometry is parsed once
// at mount time; directory and FAT contents are re-read from the device on
// every operation.
type Volume struct {
	dev Device

	partition PartitionEntry
	volumeID  VolumeID

	// Cached derived geometry.
	fatBegin     uint32 // first block of FAT copy #1
	clusterBegin uint32 // first block of the cluster region

	entries       []Entry
	entryCapacity int
	maxDepth      int
}

// Option adjusts mount behavior.
type Option func(*Volume)

// WithEntryCapacity bounds the directory entry table. Scans that would
// exceed the bound fail with ErrTableFull. The default is 100 entries.
func WithEntryCapacity(n int) Option {
	return func(v *Volume) {
		v.entryCapacity = n
	}
}

// WithMaxDepth bounds the directory recursion depth. Trees nested deeper
// fail with ErrTooDeep. The default is 16 levels.
func WithMaxDepth(n int) Option {
	return func(v *Volume) {
		v.maxDepth = n
	}
}

// Mount parses the MBR and Volume ID of the device and scans the complete
// directory tree. A mount that cannot finish the scan fails as a whole,
// there is no partial session.
func Mount(dev Device, options ...Option) (*Volume, error) {
	v := &Volume{
		dev:           dev,
		entryCapacity: defaultEntryCapacity,
		maxDepth:      defaultMaxDepth,
	}
	for _, option := range options {
		option(v)
	}
	v.entries = make([]Entry, 0, v.entryCapacity)

	var blk Block
	if err := dev.ReadBlock(0, &blk); err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDevice)
	}
	partition, err := ParseMBR(&blk)
	if err != nil {
		return nil, err
	}
	v.partition = partition

	if err := dev.ReadBlock(partition.LBABegin, &blk); err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDevice)
	}
	volumeID, err := ParseVolumeID(&blk)
	if err != nil {
		return nil, err
	}
	v.volumeID = volumeID

	// fat_begin = lba_begin + reserved_sectors
	// cluster_begin = fat_begin + num_fats * sectors_per_fat
	v.fatBegin = addr.Add(partition.LBABegin, uint32(volumeID.ReservedSectors))
	fatSectors := uint32(0)
	for i := 0; i < int(volumeID.NumFATs); i++ {
		fatSectors = addr.Add(fatSectors, volumeID.SectorsPerFAT)
	}
	v.clusterBegin = addr.Add(v.fatBegin, fatSectors)

	if err := v.readDirectory(v.clusterToBlock(volumeID.RootCluster), RootParent, 0); err != nil {
		return nil, err
	}

	return v, nil
}

// Partition returns the parsed MBR partition entry.
func (v *Volume) Partition() PartitionEntry {
	return v.partition
}

// VolumeID returns the parsed Volume ID.
func (v *Volume) VolumeID() VolumeID {
	return v.volumeID
}

// Entries returns the directory entry table in pre-order scan order:
// parents before children, siblings in on-disk slot order.
func (v *Volume) Entries() []Entry {
	return v.entries
}

// readDirectory scans one directory starting at startBlock, appending into
// the entry table and recursing depth-first into subdirectories before
// moving on to sibling slots. The single shared table keeps the pre-order
// fill sequence across all recursion levels.
func (v *Volume) readDirectory(startBlock uint32, parent int, depth int) error {
	if depth > v.maxDepth {
		return checkpoint.From(ErrTooDeep)
	}

	var blk Block
	address := startBlock
	for {
		if err := v.dev.ReadBlock(address, &blk); err != nil {
			return checkpoint.Wrap(err, ErrReadDevice)
		}

		for slot := 0; slot < entriesPerBlock; slot++ {
			raw := blk[slot*entrySize : (slot+1)*entrySize]

			if raw[0] == slotEndOfDirectory {
				return nil
			}
			if !relevantSlot(raw) {
				continue
			}

			var header entryHeader
			if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &header); err != nil {
				return checkpoint.From(err)
			}

			entryType := classify(header.Attribute)
			if entryType == TypeVolumeLabel {
				// The label names the volume, it is not part of the tree.
				continue
			}

			if len(v.entries) == v.entryCapacity {
				return checkpoint.From(ErrTableFull)
			}
			v.entries = append(v.entries, Entry{
				Name:         header.Name,
				Type:         entryType,
				Attribute:    header.Attribute,
				StartCluster: uint32(header.FirstClusterHI)<<16 | uint32(header.FirstClusterLO),
				Size:         header.FileSize,
				WriteTime:    header.WriteTime,
				WriteDate:    header.WriteDate,
				Parent:       parent,
				InUse:        true,
			})

			if entryType == TypeDirectory {
				index := len(v.entries) - 1
				start := v.clusterToBlock(v.entries[index].StartCluster)
				if err := v.readDirectory(start, index, depth+1); err != nil {
					return err
				}
			}
		}

		// Block exhausted without a terminator, the directory continues in
		// the next one.
		address = addr.Add(address, 1)
	}
}

// relevantSlot applies the skip rules shared by the tree scan and the
// delete re-scan: deleted slots, long filename continuations, hidden and
// system entries and the "." / ".." pseudo-entries are all irrelevant.
func relevantSlot(raw []byte) bool {
	if raw[0] == slotDeleted {
		return false
	}
	attribute := raw[11]
	if attribute == attrLongName {
		return false
	}
	if attribute&(attrHidden|attrSystem) != 0 {
		return false
	}
	if attribute&attrDirectory != 0 && isDotName(raw[:11]) {
		return false
	}
	return true
}

// isDotName reports whether the 11 name bytes are exactly "." or "..".
func isDotName(name []byte) bool {
	if name[0] != '.' {
		return false
	}
	if name[1] != '.' && name[1] != ' ' {
		return false
	}
	for _, b := range name[2:] {
		if b != ' ' {
			return false
		}
	}
	return true
}

// classify maps attribute bits to an entry type, volume label before
// directory before file, first match wins.
func classify(attribute byte) EntryType {
	switch {
	case attribute&attrVolumeLabel != 0:
		return TypeVolumeLabel
	case attribute&attrDirectory != 0:
		return TypeDirectory
	default:
		return TypeFile
	}
}

package sdfat

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/sdfat/sdfat/checkpoint"
)

// These errors may occur while parsing the boot structures.
var (
	ErrInvalidPartitionType = errors.New("partition type is not FAT32")
	ErrInvalidSignature     = errors.New("boot signature is not 0x55AA")
	ErrInvalidSectorSize    = errors.New("volume does not use 512 bytes per sector")
)

// validSignature accepts the boot signature in either byte order. Cards
// formatted by different tools disagree on the ordering often enough that
// both are tolerated.
func validSignature(b0, b1 byte) bool {
	return (b0 == 0x55 && b1 == 0xAA) || (b0 == 0xAA && b1 == 0x55)
}

// ParseMBR parses the first partition table slot of a Master Boot Record
// block. Only partition types 0x0B and 0x0C (FAT32 with and without LBA
// extensions) are accepted.
func ParseMBR(blk *Block) (PartitionEntry, error) {
	var raw rawPartitionEntry
	r := bytes.NewReader(blk[mbrPartitionOffset:])
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return PartitionEntry{}, checkpoint.From(err)
	}

	if !validSignature(blk[signatureOffset], blk[signatureOffset+1]) {
		return PartitionEntry{}, checkpoint.From(ErrInvalidSignature)
	}
	if raw.TypeCode != 0x0B && raw.TypeCode != 0x0C {
		return PartitionEntry{}, checkpoint.From(ErrInvalidPartitionType)
	}

	return PartitionEntry{
		BootFlag:    raw.BootFlag,
		TypeCode:    raw.TypeCode,
		LBABegin:    raw.LBABegin,
		SectorCount: raw.SectorCount,
	}, nil
}

// ParseVolumeID parses the FAT32 Volume ID (BIOS Parameter Block) of the
// block at the partition's LBA begin.
func ParseVolumeID(blk *Block) (VolumeID, error) {
	var raw rawVolumeID
	if err := binary.Read(bytes.NewReader(blk[:]), binary.LittleEndian, &raw); err != nil {
		return VolumeID{}, checkpoint.From(err)
	}

	if !validSignature(blk[signatureOffset], blk[signatureOffset+1]) {
		return VolumeID{}, checkpoint.From(ErrInvalidSignature)
	}
	if raw.BytesPerSector != BlockSize {
		return VolumeID{}, checkpoint.From(ErrInvalidSectorSize)
	}

	return VolumeID{
		BytesPerSector:    raw.BytesPerSector,
		SectorsPerCluster: raw.SectorsPerCluster,
		ReservedSectors:   raw.ReservedSectors,
		NumFATs:           raw.NumFATs,
		SectorsPerFAT:     raw.SectorsPerFAT,
		RootCluster:       raw.RootCluster,
		Media:             raw.Media,
	}, nil
}

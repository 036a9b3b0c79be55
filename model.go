// File model contains the structs which match the direct on-disk structures
// of the MBR and the FAT32 filesystem. Multi-byte fields are stored little
// endian on disk and are decoded with binary.Read; everything the rest of
// the package works with is normalized to plain integers.

package sdfat

// BlockSize is the only sector size this package supports. The card driver
// transfers single 512-byte blocks and FAT32 volumes on SD cards use 512
// bytes per sector.
const BlockSize = 512

// Block is one 512-byte device block.
type Block = [BlockSize]byte

const (
	entrySize          = 32
	entriesPerBlock    = BlockSize / entrySize
	fatEntrySize       = 4
	fatEntriesPerBlock = BlockSize / fatEntrySize

	// mbrPartitionOffset is where the first partition table slot starts
	// inside block 0.
	mbrPartitionOffset = 446
	signatureOffset    = 510
)

// rawPartitionEntry is one 16-byte MBR partition table slot.
type rawPartitionEntry struct {
	BootFlag    byte
	CHSBegin    [3]byte
	TypeCode    byte
	CHSEnd      [3]byte
	LBABegin    uint32
	SectorCount uint32
}

// rawVolumeID covers the FAT32 BIOS Parameter Block fields up to the root
// directory cluster. The boot signature sits at the fixed block offset 510
// and is checked separately.
type rawVolumeID struct {
	JumpBoot          [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster byte
	ReservedSectors   uint16
	NumFATs           byte
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             byte
	FATSize16         uint16
	SectorsPerTrack   uint16
	NumberOfHeads     uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	SectorsPerFAT     uint32
	ExtFlags          uint16
	FSVersion         uint16
	RootCluster       uint32
}

// entryHeader is one 32-byte short directory entry.
type entryHeader struct {
	Name            [11]byte
	Attribute       byte
	NTReserved      byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// Directory entry attribute bits.
const (
	attrReadOnly    = 0x01
	attrHidden      = 0x02
	attrSystem      = 0x04
	attrVolumeLabel = 0x08
	attrDirectory   = 0x10
	attrArchive     = 0x20

	// attrLongName marks a long filename continuation slot. LFN text is
	// not reconstructed here, the slots are structural noise.
	attrLongName = 0x0F
)

// Directory slot marker bytes.
const (
	slotEndOfDirectory = 0x00
	slotDeleted        = 0xE5
)

// FAT entry values 0 and 1 never point at data; a chain value at or above
// the end-of-chain region terminates a cluster chain.
const (
	clusterFree     = 0x00000000
	clusterReserved = 0x00000001
)

// isEndOfChain reports whether a FAT entry terminates a cluster chain:
// top byte at least 0x0F with the low three bytes in 0xFFFFF8-0xFFFFFF.
func isEndOfChain(v uint32) bool {
	return v>>24 >= 0x0F && v&0x00FFFFFF >= 0xFFFFF8
}

// PartitionEntry is the parsed first slot of the MBR partition table.
// CHS fields are carried for completeness but never interpreted.
type PartitionEntry struct {
	BootFlag    byte
	TypeCode    byte
	LBABegin    uint32
	SectorCount uint32
}

// VolumeID describes the geometry of a mounted FAT32 volume.
type VolumeID struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	SectorsPerFAT     uint32
	RootCluster       uint32
	Media             byte
}

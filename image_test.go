package sdfat

import "encoding/binary"

// memDevice is an in-memory block device for tests. Blocks that were never
// written read back as zeros, which conveniently terminates directories
// and marks FAT entries free.
type memDevice struct {
	blocks map[uint32]*Block
}

func newMemDevice() *memDevice {
	return &memDevice{blocks: map[uint32]*Block{}}
}

func (d *memDevice) ReadBlock(address uint32, blk *Block) error {
	if b, ok := d.blocks[address]; ok {
		*blk = *b
		return nil
	}
	*blk = Block{}
	return nil
}

func (d *memDevice) WriteBlock(address uint32, blk *Block) error {
	b := *blk
	d.blocks[address] = &b
	return nil
}

func (d *memDevice) block(address uint32) *Block {
	if b, ok := d.blocks[address]; ok {
		return b
	}
	b := &Block{}
	d.blocks[address] = b
	return b
}

// Geometry of the synthetic test volume.
const (
	testLBABegin      = 64
	testReserved      = 4
	testNumFATs       = 2
	testSectorsPerFAT = 2
	testRootCluster   = 2

	testFATBegin     = testLBABegin + testReserved                  // 68
	testClusterBegin = testFATBegin + testNumFATs*testSectorsPerFAT // 72
)

// testClusterBlock translates a cluster number in the synthetic volume.
func testClusterBlock(cluster uint32) uint32 {
	return testClusterBegin + cluster - 2
}

// name11 pads a raw name to the 11-byte directory form without any 8.3
// interpretation, so dot pseudo-entries can be written too.
func name11(s string) [11]byte {
	var n [11]byte
	for i := range n {
		n[i] = ' '
	}
	copy(n[:], s)
	return n
}

func writeMBR(d *memDevice, typeCode byte, sig [2]byte) {
	blk := d.block(0)
	blk[mbrPartitionOffset+4] = typeCode
	binary.LittleEndian.PutUint32(blk[mbrPartitionOffset+8:], testLBABegin)
	binary.LittleEndian.PutUint32(blk[mbrPartitionOffset+12:], 4096)
	blk[signatureOffset] = sig[0]
	blk[signatureOffset+1] = sig[1]
}

func writeVolumeID(d *memDevice, sig [2]byte) {
	blk := d.block(testLBABegin)
	binary.LittleEndian.PutUint16(blk[11:], BlockSize)
	blk[13] = 1 // sectors per cluster
	binary.LittleEndian.PutUint16(blk[14:], testReserved)
	blk[16] = testNumFATs
	blk[21] = 0xF8
	binary.LittleEndian.PutUint32(blk[36:], testSectorsPerFAT)
	binary.LittleEndian.PutUint32(blk[44:], testRootCluster)
	blk[signatureOffset] = sig[0]
	blk[signatureOffset+1] = sig[1]
}

// writeSlot fills directory slot number slot of the given block.
func writeSlot(blk *Block, slot int, name [11]byte, attribute byte, cluster, size uint32) {
	raw := blk[slot*entrySize : (slot+1)*entrySize]
	copy(raw[:11], name[:])
	raw[11] = attribute
	binary.LittleEndian.PutUint16(raw[20:], uint16(cluster>>16))
	binary.LittleEndian.PutUint16(raw[22:], 0x2B3C) // write time
	binary.LittleEndian.PutUint16(raw[24:], 0x58E5) // write date
	binary.LittleEndian.PutUint16(raw[26:], uint16(cluster))
	binary.LittleEndian.PutUint32(raw[28:], size)
}

func setFAT(d *memDevice, cluster, value uint32) {
	blk := d.block(testFATBegin + cluster/fatEntriesPerBlock)
	binary.LittleEndian.PutUint32(blk[cluster%fatEntriesPerBlock*fatEntrySize:], value)
}

func fatValue(d *memDevice, cluster uint32) uint32 {
	blk := d.block(testFATBegin + cluster/fatEntriesPerBlock)
	return binary.LittleEndian.Uint32(blk[cluster%fatEntriesPerBlock*fatEntrySize:])
}

const endOfChain = 0x0FFFFFFF

// buildTestImage creates a two-level volume:
//
//	/            SUBDIR (directory, cluster 3), ROOT.TXT (empty file)
//	/SUBDIR      HELLO.TXT (600 bytes across clusters 4 and 5),
//	             SECRET.TXT (hidden, never recorded)
//
// plus a volume label and the usual dot pseudo-entries.
func buildTestImage() *memDevice {
	d := newMemDevice()
	writeMBR(d, 0x0C, [2]byte{0x55, 0xAA})
	writeVolumeID(d, [2]byte{0x55, 0xAA})

	root := d.block(testClusterBlock(testRootCluster))
	writeSlot(root, 0, name11("MYDISK"), attrVolumeLabel, 0, 0)
	writeSlot(root, 1, name11("SUBDIR"), attrDirectory, 3, 0)
	writeSlot(root, 2, name11("ROOT    TXT"), attrArchive, 0, 0)

	sub := d.block(testClusterBlock(3))
	writeSlot(sub, 0, name11("."), attrDirectory, 3, 0)
	writeSlot(sub, 1, name11(".."), attrDirectory, 0, 0)
	writeSlot(sub, 2, name11("SECRET  TXT"), attrArchive|attrHidden, 6, 20)
	writeSlot(sub, 3, name11("HELLO   TXT"), attrArchive, 4, 600)

	setFAT(d, 2, endOfChain)
	setFAT(d, 3, endOfChain)
	setFAT(d, 4, 5)
	setFAT(d, 5, endOfChain)

	first := d.block(testClusterBlock(4))
	for i := range first {
		first[i] = 'A'
	}
	second := d.block(testClusterBlock(5))
	for i := 0; i < 88; i++ {
		second[i] = 'B'
	}

	return d
}

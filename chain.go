package sdfat

import (
	"encoding/binary"
	"errors"

	"github.com/sdfat/sdfat/addr"
	"github.com/sdfat/sdfat/checkpoint"
)

// These errors may occur while working on the FAT.
var (
	ErrReadFAT  = errors.New("could not read FAT sector")
	ErrWriteFAT = errors.New("could not write FAT sector")
)

// clusterToBlock translates a cluster number to its first block address:
// cluster_begin + (cluster - 2) * sectors_per_cluster. Clusters 0 and 1 do
// not exist in the data region, callers must not pass them; the subtraction
// wraps silently if they do.
func (v *Volume) clusterToBlock(cluster uint32) uint32 {
	offset := addr.Sub(cluster, 2) * uint32(v.volumeID.SectorsPerCluster)
	return addr.Add(v.clusterBegin, offset)
}

// locateFATEntry returns the FAT sector offset holding the entry for
// cluster and the byte index of the entry inside that sector. 128 four-byte
// entries fit one 512-byte FAT sector.
func locateFATEntry(cluster uint32) (sector, index uint32) {
	return cluster / fatEntriesPerBlock, cluster % fatEntriesPerBlock * fatEntrySize
}

// nextInChain reads the FAT entry of cluster. It returns the next cluster
// of the chain, or end == true when the entry marks the end of the chain.
func (v *Volume) nextInChain(cluster uint32) (next uint32, end bool, err error) {
	sector, index := locateFATEntry(cluster)

	var blk Block
	if err := v.dev.ReadBlock(addr.Add(v.fatBegin, sector), &blk); err != nil {
		return 0, false, checkpoint.Wrap(err, ErrReadFAT)
	}

	value := binary.LittleEndian.Uint32(blk[index : index+fatEntrySize])
	if isEndOfChain(value) {
		return 0, true, nil
	}
	return value, false, nil
}

// freeCluster zeroes the FAT entry of cluster in place and writes the
// sector back. Only FAT copy #1 is touched; the redundant copy is left
// stale.
func (v *Volume) freeCluster(cluster uint32) error {
	sector, index := locateFATEntry(cluster)
	fatSector := addr.Add(v.fatBegin, sector)

	var blk Block
	if err := v.dev.ReadBlock(fatSector, &blk); err != nil {
		return checkpoint.Wrap(err, ErrReadFAT)
	}

	binary.LittleEndian.PutUint32(blk[index:index+fatEntrySize], clusterFree)

	if err := v.dev.WriteBlock(fatSector, &blk); err != nil {
		return checkpoint.Wrap(err, ErrWriteFAT)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/sdfat/sdfat"
	"github.com/spf13/cobra"
)

// createInfoCommand creates the info subcommand.
func createInfoCommand() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info IMAGE_FILE",
		Short: "shows the partition and volume geometry of an image",
		Args:  cobra.ExactArgs(1),
		RunE:  executeInfo,
	}
	return infoCmd
}

// executeInfo handles the info command execution logic.
func executeInfo(cmd *cobra.Command, args []string) error {
	log := logger()
	imageFile := args[0]
	log.Infof("Mounting image file: %s", imageFile)

	volume, f, err := mountImage(imageFile)
	if err != nil {
		return fmt.Errorf("mount image: %w", err)
	}
	defer f.Close()

	partition := volume.Partition()
	volumeID := volume.VolumeID()

	var files, directories int
	for _, e := range volume.Entries() {
		switch e.Type {
		case sdfat.TypeFile:
			files++
		case sdfat.TypeDirectory:
			directories++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Partition type:      %#02x\n", partition.TypeCode)
	fmt.Fprintf(out, "Partition start LBA: %d\n", partition.LBABegin)
	fmt.Fprintf(out, "Partition sectors:   %d\n", partition.SectorCount)
	fmt.Fprintf(out, "Bytes per sector:    %d\n", volumeID.BytesPerSector)
	fmt.Fprintf(out, "Sectors per cluster: %d\n", volumeID.SectorsPerCluster)
	fmt.Fprintf(out, "Reserved sectors:    %d\n", volumeID.ReservedSectors)
	fmt.Fprintf(out, "FAT copies:          %d\n", volumeID.NumFATs)
	fmt.Fprintf(out, "Sectors per FAT:     %d\n", volumeID.SectorsPerFAT)
	fmt.Fprintf(out, "Root cluster:        %d\n", volumeID.RootCluster)
	fmt.Fprintf(out, "Files:               %d\n", files)
	fmt.Fprintf(out, "Directories:         %d\n", directories)
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	diskfs "github.com/diskfs/go-diskfs"
	diskpkg "github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	imageSizeMiB int64
	volumeLabel  string
)

// createMakeImageCommand creates the mkimg subcommand.
func createMakeImageCommand() *cobra.Command {
	makeImageCmd := &cobra.Command{
		Use:   "mkimg IMAGE_FILE [FILE...]",
		Short: "creates a partitioned FAT32 image",
		Long: `Mkimg writes a fresh disk image with a single FAT32
partition in the MBR and copies the given host files into
its root directory. The result is readable by the other
subcommands and by the library itself.`,
		Args: cobra.MinimumNArgs(1),
		RunE: executeMakeImage,
	}

	makeImageCmd.Flags().Int64Var(&imageSizeMiB, "size", 64,
		"Image size in MiB")
	makeImageCmd.Flags().StringVar(&volumeLabel, "label", "SDFAT",
		"Volume label for the new filesystem")

	return makeImageCmd
}

// executeMakeImage handles the mkimg command execution logic.
func executeMakeImage(cmd *cobra.Command, args []string) error {
	log := logger()
	imageFile := args[0]
	log.Infof("Creating %d MiB image file: %s", imageSizeMiB, imageFile)

	const sectorSize = 512
	const partitionStart = 2048 // leave the conventional 1 MiB gap before the partition

	diskSize := imageSizeMiB * 1024 * 1024
	partitionSectors := diskSize/sectorSize - partitionStart

	d, err := diskfs.Create(imageFile, diskSize, diskfs.SectorSizeDefault)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer d.Close()

	table := &mbr.Table{
		LogicalSectorSize:  sectorSize,
		PhysicalSectorSize: sectorSize,
		Partitions: []*mbr.Partition{
			{
				Type:  mbr.Fat32LBA,
				Start: partitionStart,
				Size:  uint32(partitionSectors),
			},
		},
	}
	if err := d.Partition(table); err != nil {
		return fmt.Errorf("write partition table: %w", err)
	}

	spec := diskpkg.FilesystemSpec{
		Partition:   1,
		FSType:      filesystem.TypeFat32,
		VolumeLabel: volumeLabel,
	}
	imageFS, err := d.CreateFilesystem(spec)
	if err != nil {
		return fmt.Errorf("create filesystem: %w", err)
	}

	for _, hostFile := range args[1:] {
		if err := copyIntoImage(imageFS, hostFile); err != nil {
			return err
		}
		log.Infof("Copied %s", hostFile)
	}
	return nil
}

// copyIntoImage places a host file into the root directory of the new image
// under its uppercased base name.
func copyIntoImage(imageFS filesystem.FileSystem, hostFile string) error {
	content, err := afero.ReadFile(afero.NewOsFs(), hostFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", hostFile, err)
	}

	target := "/" + strings.ToUpper(filepath.Base(hostFile))
	out, err := imageFS.OpenFile(target, os.O_CREATE|os.O_RDWR)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	if _, err := out.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/sdfat/sdfat"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

func main() {
	if err := createRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// createRootCommand wires up the subcommands and global flags.
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sdfat",
		Short: "inspect and modify FAT32 disk images",
		Long: `sdfat mounts the first partition of a FAT32 disk image,
lists and reads the files on it, deletes files and creates
fresh test images.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(
		createInfoCommand(),
		createListCommand(),
		createCatCommand(),
		createRemoveCommand(),
		createMakeImageCommand(),
	)
	return rootCmd
}

// logger builds a console logger honoring --verbose.
func logger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log.Sugar()
}

// mountImage opens an image file read-write and mounts the first partition.
// The caller closes the returned file after it is done with the volume.
func mountImage(path string) (*sdfat.Volume, afero.File, error) {
	dev, f, err := sdfat.OpenImage(afero.NewOsFs(), path)
	if err != nil {
		return nil, nil, err
	}

	volume, err := sdfat.Mount(dev)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return volume, f, nil
}

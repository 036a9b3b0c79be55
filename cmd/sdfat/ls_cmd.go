package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
)

var longListing bool

// createListCommand creates the ls subcommand.
func createListCommand() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "ls IMAGE_FILE [DIR]",
		Short: "lists the files on an image",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  executeList,
	}

	listCmd.Flags().BoolVarP(&longListing, "long", "l", false,
		"Show size and modification time for each entry")

	return listCmd
}

// executeList handles the ls command execution logic.
func executeList(cmd *cobra.Command, args []string) error {
	log := logger()
	imageFile := args[0]
	start := "."
	if len(args) == 2 {
		start = args[1]
	}
	log.Infof("Listing %s on image file: %s", start, imageFile)

	volume, f, err := mountImage(imageFile)
	if err != nil {
		return fmt.Errorf("mount image: %w", err)
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	return fs.WalkDir(volume.FS(), start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		if !longListing {
			fmt.Fprintln(out, path)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		marker := " "
		if d.IsDir() {
			marker = "d"
		}
		fmt.Fprintf(out, "%s %8d  %s  %s\n",
			marker, info.Size(), info.ModTime().Format("2006-01-02 15:04:05"), path)
		return nil
	})
}

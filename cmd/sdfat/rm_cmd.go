package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// createRemoveCommand creates the rm subcommand.
func createRemoveCommand() *cobra.Command {
	removeCmd := &cobra.Command{
		Use:   "rm IMAGE_FILE PATH",
		Short: "deletes a file on an image",
		Long: `Rm frees the cluster chain of a file and marks its
directory slot as deleted. Directories cannot be removed.`,
		Args: cobra.ExactArgs(2),
		RunE: executeRemove,
	}
	return removeCmd
}

// executeRemove handles the rm command execution logic.
func executeRemove(cmd *cobra.Command, args []string) error {
	log := logger()
	imageFile, path := args[0], args[1]
	log.Infof("Deleting %s on image file: %s", path, imageFile)

	volume, f, err := mountImage(imageFile)
	if err != nil {
		return fmt.Errorf("mount image: %w", err)
	}
	defer f.Close()

	deleted, err := volume.DeleteFilePath(path)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if !deleted {
		return fmt.Errorf("no such file: %s", path)
	}

	log.Infof("Deleted %s", path)
	return nil
}

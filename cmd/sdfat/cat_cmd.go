package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// createCatCommand creates the cat subcommand.
func createCatCommand() *cobra.Command {
	catCmd := &cobra.Command{
		Use:   "cat IMAGE_FILE PATH",
		Short: "prints the content of a file on an image",
		Long: `Cat reads a file from the mounted image and writes its
content to stdout. The path uses forward slashes and 8.3
names, for example DOCS/NOTES.TXT.`,
		Args: cobra.ExactArgs(2),
		RunE: executeCat,
	}
	return catCmd
}

// executeCat handles the cat command execution logic.
func executeCat(cmd *cobra.Command, args []string) error {
	log := logger()
	imageFile, path := args[0], args[1]
	log.Infof("Reading %s from image file: %s", path, imageFile)

	volume, f, err := mountImage(imageFile)
	if err != nil {
		return fmt.Errorf("mount image: %w", err)
	}
	defer f.Close()

	content, found, err := volume.ReadFilePath(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if !found {
		return fmt.Errorf("no such file: %s", path)
	}

	_, err = cmd.OutOrStdout().Write(content)
	return err
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/visioncrafter/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter prompts file and config",
	Long:  "Writes prompts.json and visioncrafter.yaml to the current directory. Existing files are kept unless --force is given.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	files := []struct {
		path string
		data []byte
	}{
		{"prompts.json", config.DefaultPromptsJSON()},
		{defaultConfigFile, config.ExampleConfigYAML()},
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		written, err := writeStarter(f.path, f.data, initForce)
		if err != nil {
			return err
		}
		if written {
			fmt.Fprintf(out, "wrote %s\n", f.path)
		} else {
			fmt.Fprintf(out, "kept existing %s\n", f.path)
		}
	}
	return nil
}

// writeStarter writes data to path. Without force an existing file is left
// alone and reported as not written.
func writeStarter(path string, data []byte, force bool) (bool, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, f.Close()
}

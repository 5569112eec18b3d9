package main

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dropzone/internal/config"
	"github.com/vango-dev/dropzone/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default dropzone.json",
		Long: `Write a dropzone.json with the default upload settings.

Examples:
  dropzone init
  dropzone init --dir ./site --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(dir, force, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write dropzone.json to")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing dropzone.json")

	return cmd
}

func runInit(dir string, force bool, out io.Writer) error {
	path := filepath.Join(dir, config.ConfigFileName)
	if config.Exists(dir) && !force {
		return errors.New("D306").WithPath(path)
	}

	if err := config.New().SaveTo(path); err != nil {
		return err
	}

	success(out, "Created %s", path)
	return nil
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/dropzone/internal/errors"
	"github.com/vango-dev/dropzone/pkg/upload"
)

func validateCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Check files against the upload rules",
		Long: `Check each file's type and size the way the drop zone does, without
uploading anything.

Examples:
  dropzone validate plan.png
  dropzone validate scans/*.jpg --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(root, args, jsonOutput, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print one JSON diagnostic per rejected file")

	return cmd
}

func runValidate(root *rootOptions, paths []string, jsonOutput bool, out io.Writer) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	widgetCfg := cfg.WidgetConfig()

	rejected := 0
	for _, path := range paths {
		d := validatePath(path, widgetCfg)
		if d == nil {
			if !jsonOutput {
				success(out, "%s", path)
			}
			continue
		}

		rejected++
		if jsonOutput {
			fmt.Fprintln(out, d.FormatJSON())
		} else {
			errorMsg(out, "%s", d.FormatCompact())
		}
	}

	if rejected > 0 {
		return errors.Newf(errors.CategoryCLI, "%d of %d files rejected", rejected, len(paths))
	}
	return nil
}

func validatePath(path string, cfg upload.Config) *errors.Diagnostic {
	f, err := upload.OpenFile(path)
	if err != nil {
		return errors.New("D301").WithPath(path).Wrap(err)
	}
	if err := upload.Validate(f, cfg); err != nil {
		return errors.FromUpload(err).WithPath(path)
	}
	return nil
}

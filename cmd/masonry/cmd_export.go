package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"masonry/internal/certification"
	"masonry/internal/export"
	"masonry/internal/opencontrol"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		dataDir string
		outDir  string
		format  string
		flatten bool
		sep     string
		strict  bool
	)
	cmd := &cobra.Command{
		Use:   "export [certification]",
		Short: "Resolve a certification into a single YAML or JSON document",
		Long: `Resolve a certification from the workspace in --data and write
<output>/<certification>.yaml (or .json with --format json). Local component
artifacts are copied to <output>/<system>/<component>/.

--flatten writes JSON as one object whose keys are the nested keys joined
with --separator; list elements use their index.

Without a certification name, an interactive picker is shown when stdin is a
terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case format != "yaml" && format != "json":
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			case flatten && format == "yaml":
				return fmt.Errorf("--flatten unsupported for YAML")
			}
			ws, err := opencontrol.OpenWorkspace(dataDir, opencontrol.WithLogger(a.logger))
			if err != nil {
				return err
			}
			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				name, err = chooseCertification(ws)
				if err != nil {
					return err
				}
			}

			m, err := ws.LoadCertification(name)
			if err != nil {
				return err
			}
			systems, err := ws.LoadSystems()
			if err != nil {
				return err
			}
			standards, err := ws.LoadStandards()
			if err != nil {
				return err
			}
			a.logger.Debug("workspace loaded", "dir", ws.Dir, "systems", len(systems), "standards", len(standards))

			res, err := certification.Resolve(cmd.Context(), m, systems, standards, certification.Options{
				ExportDir: outDir,
				Workers:   a.cfg.Workers,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}
			var path string
			if format == "json" {
				if !flatten {
					sep = ""
				}
				path, err = export.WriteJSON(res.Certification, outDir, sep)
			} else {
				path, err = export.Write(res.Certification, outDir)
			}
			if err != nil {
				return err
			}
			return report(cmd, a, res.Diagnostics, strict, "exported %s", path)
		},
	}
	cmd.Flags().StringVarP(&dataDir, "data", "d", ".", "OpenControl workspace directory")
	cmd.Flags().StringVarP(&outDir, "output", "o", "exports", "export directory")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	cmd.Flags().BoolVar(&flatten, "flatten", false, "flatten JSON output into a single object")
	cmd.Flags().StringVar(&sep, "separator", export.DefaultSeparator, "key separator used by --flatten")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any diagnostic is reported")
	return cmd
}

// chooseCertification asks the user to pick a certification. It fails
// instead of prompting when stdin is not a terminal.
func chooseCertification(ws *opencontrol.Workspace) (string, error) {
	names, err := ws.ListCertifications()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no certifications in %s", ws.Dir)
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return "", fmt.Errorf("certification name required (available: %v)", names)
	}
	return pickCertification(names)
}

// report logs diagnostics, prints the outcome and applies --strict.
func report(cmd *cobra.Command, a *app, diags *certification.Diagnostics, strict bool, format string, args ...any) error {
	diags.Log(a.logger)
	out := cmd.OutOrStdout()
	success(out, format, args...)
	if n := diags.Len(); n > 0 {
		warn(out, "%d diagnostic(s) reported", n)
		if strict {
			return fmt.Errorf("%d diagnostic(s) reported with --strict", n)
		}
	}
	return nil
}

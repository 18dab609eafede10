package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"masonry/internal/certification"
	"masonry/internal/export"
	"masonry/internal/render"
)

func newDocsCmd(a *app) *cobra.Command {
	var (
		outDir      string
		markdownDir string
		strict      bool
	)
	cmd := &cobra.Command{
		Use:   "docs <format> <certification.yaml>",
		Short: "Render an exported certification as documentation",
		Long: `Render a certification written by "masonry export".

Formats:
  gitbook    SUMMARY.md, README.md and content/ pages; --markdowns pages are merged in
  docx       <output>/<certification>.docx
  inventory  <output>/<certification>.yaml listing documentation gaps

Artifact paths in the certification resolve against its directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := render.Lookup(args[0])
			if err != nil {
				return err
			}
			return renderCertification(cmd, a, r, args[1], outDir, markdownDir, strict)
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "exports/docs", "output directory")
	cmd.Flags().StringVarP(&markdownDir, "markdowns", "m", "", "directory of hand-written markdown merged into a gitbook")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any diagnostic is reported")
	return cmd
}

func newInventoryCmd(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "inventory <certification.yaml>",
		Short: "List missing justifications and component documentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := render.Lookup("inventory")
			if err != nil {
				return err
			}
			return renderCertification(cmd, a, r, args[0], outDir, "", false)
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "exports/inventories", "output directory")
	return cmd
}

func renderCertification(cmd *cobra.Command, a *app, r render.Renderer, certPath, outDir, markdownDir string, strict bool) error {
	cert, err := export.Load(certPath)
	if err != nil {
		return err
	}
	out, err := r.Render(cert, outDir, render.Options{
		SourceDir:   filepath.Dir(certPath),
		MarkdownDir: markdownDir,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}
	diags := &certification.Diagnostics{}
	diags.Add(out.Diagnostics...)
	return report(cmd, a, diags, strict, "wrote %s %s", r.Name(), out.Path)
}

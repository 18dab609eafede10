// Package render holds the output formats a resolved certification can be
// turned into. Every format implements Renderer and is registered by name.
package render

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"masonry/internal/certification"
	"masonry/internal/docx"
	"masonry/internal/gitbook"
	"masonry/internal/inventory"
	"masonry/internal/model"
)

// Options are shared by every renderer. Renderers ignore fields they do not
// use.
type Options struct {
	// SourceDir is where relative artifact paths in the certification
	// resolve.
	SourceDir string
	// MarkdownDir holds hand-written pages merged into a gitbook.
	MarkdownDir string
	Logger      *slog.Logger
}

// Output describes what a renderer produced.
type Output struct {
	// Path is the written file, or the output directory for multi-file
	// formats.
	Path        string
	Diagnostics []certification.Diagnostic
}

// Renderer is the interface every output format implements.
type Renderer interface {
	// Name returns the format's short identifier (e.g. "gitbook").
	Name() string

	// Render writes cert under outDir.
	Render(cert *model.Certification, outDir string, opts Options) (Output, error)
}

var registry = map[string]Renderer{}

func register(r Renderer) { registry[r.Name()] = r }

func init() {
	register(gitbookRenderer{})
	register(docxRenderer{})
	register(inventoryRenderer{})
}

// Lookup returns the renderer registered as name.
func Lookup(name string) (Renderer, error) {
	r, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %v)", name, Names())
	}
	return r, nil
}

// Names returns the registered format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type gitbookRenderer struct{}

func (gitbookRenderer) Name() string { return "gitbook" }

func (gitbookRenderer) Render(cert *model.Certification, outDir string, opts Options) (Output, error) {
	book, err := gitbook.Render(cert, outDir, gitbook.Options{
		SourceDir:   opts.SourceDir,
		MarkdownDir: opts.MarkdownDir,
		Logger:      opts.Logger,
	})
	if err != nil {
		return Output{}, err
	}
	return Output{Path: outDir, Diagnostics: book.Diagnostics()}, nil
}

type docxRenderer struct{}

func (docxRenderer) Name() string { return "docx" }

func (docxRenderer) Render(cert *model.Certification, outDir string, opts Options) (Output, error) {
	path := filepath.Join(outDir, cert.Name+".docx")
	diag, err := docx.Build(cert, path, docx.Options{SourceDir: opts.SourceDir, Logger: opts.Logger})
	if err != nil {
		return Output{}, err
	}
	return Output{Path: path, Diagnostics: diag}, nil
}

type inventoryRenderer struct{}

func (inventoryRenderer) Name() string { return "inventory" }

func (inventoryRenderer) Render(cert *model.Certification, outDir string, _ Options) (Output, error) {
	path, err := inventory.Write(inventory.Build(cert), outDir)
	if err != nil {
		return Output{}, err
	}
	return Output{Path: path}, nil
}

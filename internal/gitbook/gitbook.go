package gitbook

// gitbook.go — renders a resolved certification as a GitBook.
//
// Book layout:
//   SUMMARY.md                          — navigation, standards then systems
//   README.md                           — identical to SUMMARY.md
//   content/<std>-<family>.md           — one per control family
//   content/<std>-<control>.md          — one per control with justifications
//   content/<system>.md                 — one per system
//   content/<system>-<component>.md     — one per component
//   artifacts/<path>                    — copies of locally stored evidence
//
// Every file name under content/ is a slug. Listings use natural order.

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"masonry/internal/certification"
	"masonry/internal/export"
	"masonry/internal/frontmatter"
	"masonry/internal/model"
)

// Options controls book generation.
type Options struct {
	// SourceDir is where relative artifact paths in the certification
	// resolve; normally the directory holding the certification YAML.
	// Artifacts are linked but not copied when it is empty.
	SourceDir string
	// MarkdownDir holds hand-written pages copied into the book. Its
	// SUMMARY.md is placed ahead of the generated summary.
	MarkdownDir string
	// Preamble replaces the default "# Summary" heading of SUMMARY.md.
	// Render fills it from MarkdownDir.
	Preamble string
	Logger   *slog.Logger
}

// Book holds pre-generated page content (path → markdown) and the artifact
// copies the pages link to. Paths are relative to the output directory,
// using forward slashes.
type Book struct {
	name        string
	pages       map[string]string
	artifacts   map[string]string // book path → source file
	diagnostics []certification.Diagnostic
}

// Pages returns page paths in sorted order.
func (b *Book) Pages() []string {
	paths := make([]string, 0, len(b.pages))
	for p := range b.pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Page returns the content of one page.
func (b *Book) Page(path string) (string, bool) {
	p, ok := b.pages[path]
	return p, ok
}

// Artifacts returns book-relative artifact paths in sorted order.
func (b *Book) Artifacts() []string {
	paths := make([]string, 0, len(b.artifacts))
	for p := range b.artifacts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Diagnostics returns the gaps found while building and writing the book.
func (b *Book) Diagnostics() []certification.Diagnostic {
	return append([]certification.Diagnostic(nil), b.diagnostics...)
}

// Generate builds every page for cert. No files are read or written.
func Generate(cert *model.Certification, opts Options) (*Book, error) {
	if cert == nil {
		return nil, fmt.Errorf("gitbook: nil certification")
	}
	g := &generator{
		cert: cert,
		opts: opts,
		book: &Book{
			name:      cert.Name,
			pages:     make(map[string]string),
			artifacts: make(map[string]string),
		},
	}
	if err := g.build(); err != nil {
		return nil, err
	}
	return g.book, nil
}

// Write writes every page of book to outDir in sorted path order, then
// copies artifacts, skipping copies whose destination is already identical.
// Artifacts whose source file is missing are recorded as diagnostics.
func Write(book *Book, outDir string) error {
	if err := os.MkdirAll(filepath.Join(outDir, "content"), 0o755); err != nil {
		return fmt.Errorf("mkdir content: %w", err)
	}
	for _, p := range book.Pages() {
		abs := filepath.Join(outDir, filepath.FromSlash(p))
		if err := writePage(abs, book.pages[p]); err != nil {
			return err
		}
	}
	for _, p := range book.Artifacts() {
		src := book.artifacts[p]
		if info, err := os.Stat(src); err != nil || info.IsDir() {
			book.diagnostics = append(book.diagnostics, certification.Diagnostic{
				Kind:          certification.MissingArtifact,
				Certification: book.name,
				Detail:        src,
			})
			continue
		}
		if _, err := export.CopyFile(src, filepath.Join(outDir, filepath.FromSlash(p))); err != nil {
			return fmt.Errorf("copy artifact %s: %w", p, err)
		}
	}
	return nil
}

// Render copies MarkdownDir into outDir when set, generates the book and
// writes it.
func Render(cert *model.Certification, outDir string, opts Options) (*Book, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MarkdownDir != "" {
		if err := export.CopyDir(opts.MarkdownDir, outDir); err != nil {
			return nil, fmt.Errorf("copy markdowns: %w", err)
		}
		data, err := os.ReadFile(filepath.Join(opts.MarkdownDir, "SUMMARY.md"))
		switch {
		case err == nil:
			opts.Preamble = string(frontmatter.Body(data))
		case os.IsNotExist(err):
			logger.Debug("markdown dir has no SUMMARY.md", "dir", opts.MarkdownDir)
		default:
			return nil, fmt.Errorf("read summary: %w", err)
		}
	}
	book, err := Generate(cert, opts)
	if err != nil {
		return nil, err
	}
	if err := Write(book, outDir); err != nil {
		return nil, err
	}
	logger.Debug("wrote gitbook", "dir", outDir, "pages", len(book.pages), "artifacts", len(book.artifacts))
	return book, nil
}

func writePage(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

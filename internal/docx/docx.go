// Package docx renders a resolved certification as a Word document.
//
// The document has two parts, each under a title heading:
//
//	Components  → system name (1) → component name (2) → references
//	Standards   → standard (1) → control (2) → control name (3)
//	              → "system - component" (4) → narrative, references
//
// Keys at every level are walked in natural order.
package docx

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"masonry/internal/certification"
	"masonry/internal/model"
	"masonry/internal/natsort"
)

// Sink receives document content in reading order. *Document implements it.
type Sink interface {
	AddHeading(text string, level int)
	AddParagraph(text string)
	AddPicture(path string) error
}

// Options controls rendering.
type Options struct {
	// SourceDir is where relative picture paths resolve.
	SourceDir string
	Logger    *slog.Logger
}

type renderer struct {
	cert   *model.Certification
	sink   Sink
	opts   Options
	logger *slog.Logger
	diag   []certification.Diagnostic
}

// Render writes cert into sink and returns the gaps it found: pictures that
// could not be embedded and references to unknown verifications.
func Render(cert *model.Certification, sink Sink, opts Options) ([]certification.Diagnostic, error) {
	if cert == nil {
		return nil, fmt.Errorf("docx: nil certification")
	}
	r := &renderer{cert: cert, sink: sink, opts: opts, logger: opts.Logger}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.components()
	r.standards()
	return r.diag, nil
}

// Build renders cert into a new document saved at path.
func Build(cert *model.Certification, path string, opts Options) ([]certification.Diagnostic, error) {
	doc := New()
	diag, err := Render(cert, doc, opts)
	if err != nil {
		return nil, err
	}
	if err := doc.Save(path); err != nil {
		return nil, err
	}
	return diag, nil
}

func (r *renderer) components() {
	r.sink.AddHeading("Components", 0)
	for _, sys := range r.cert.SystemKeys() {
		snap := r.cert.Components[sys]
		r.sink.AddHeading(orKey(snap.Name, sys), 1)
		for _, comp := range r.cert.ComponentKeys(sys) {
			c := snap.Components[comp]
			r.sink.AddHeading(orKey(c.Name, comp), 2)
			for _, ref := range c.References {
				r.reference(ref, certification.Diagnostic{System: sys, Component: comp})
			}
		}
	}
}

func (r *renderer) standards() {
	r.sink.AddHeading("Standards", 0)
	for _, std := range r.cert.StandardKeys() {
		r.sink.AddHeading(std, 1)
		for _, ctrl := range r.cert.ControlKeys(std) {
			c := r.cert.Control(std, ctrl)
			r.sink.AddHeading(ctrl, 2)
			if c.Meta.Name != "" {
				r.sink.AddHeading(c.Meta.Name, 3)
			}
			justifications := append([]model.Justification(nil), c.Justifications...)
			sort.SliceStable(justifications, func(i, j int) bool {
				x, y := justifications[i], justifications[j]
				if x.System != y.System {
					return natsort.Less(x.System, y.System)
				}
				return natsort.Less(x.Component, y.Component)
			})
			for _, j := range justifications {
				r.sink.AddHeading(j.System+" - "+j.Component, 4)
				if j.ImplementationStatus != "" {
					r.sink.AddParagraph("Implementation status: " + string(j.ImplementationStatus))
				}
				for _, p := range Paragraphs(j.Narrative) {
					r.sink.AddParagraph(p)
				}
				for _, ref := range j.References {
					at := certification.Diagnostic{Standard: std, Control: ctrl, System: ref.System, Component: ref.Component}
					target := ref
					if ref.Verification != "" {
						v, ok := r.cert.Verification(ref)
						if !ok {
							at.Kind = certification.MissingCrossReference
							at.Detail = "verification " + ref.Verification
							r.add(at)
							continue
						}
						target = v
					}
					r.reference(target, at)
				}
			}
		}
	}
}

// Paragraphs splits a narrative into document paragraphs: the plain text as
// one paragraph, or one "label - text" paragraph per section.
func Paragraphs(n model.Narrative) []string {
	switch n.Kind() {
	case model.NarrativePlain:
		if t := strings.TrimSpace(n.Text()); t != "" {
			return []string{t}
		}
	case model.NarrativeSectioned:
		var out []string
		for _, label := range n.Labels() {
			out = append(out, label+" - "+strings.TrimSpace(n.Section(label)))
		}
		return out
	}
	return nil
}

// reference embeds images and lists everything else as "name - location".
// A picture that cannot be embedded falls back to the text form.
func (r *renderer) reference(ref model.Reference, at certification.Diagnostic) {
	loc := ref.Location()
	if loc == "" {
		return
	}
	if ref.IsImage() && !ref.IsRemote() {
		src := filepath.FromSlash(loc)
		if !filepath.IsAbs(src) && r.opts.SourceDir != "" {
			src = filepath.Join(r.opts.SourceDir, src)
		}
		err := r.sink.AddPicture(src)
		if err == nil {
			return
		}
		r.logger.Debug("picture not embedded", "path", src, "error", err)
		at.Kind = certification.MissingArtifact
		at.Detail = src
		r.add(at)
	}
	r.sink.AddParagraph(ref.Title() + " - " + loc)
}

func (r *renderer) add(d certification.Diagnostic) {
	d.Certification = r.cert.Name
	r.diag = append(r.diag, d)
}

func orKey(name, key string) string {
	if name != "" {
		return name
	}
	return key
}

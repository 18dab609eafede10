package gitbook

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosimple/slug"

	"masonry/internal/certification"
	"masonry/internal/export"
	"masonry/internal/frontmatter"
	"masonry/internal/model"
	"masonry/internal/natsort"
)

// pageMeta is the frontmatter of every content page.
type pageMeta struct {
	Component string   `yaml:"component,omitempty"`
	Control   string   `yaml:"control,omitempty"`
	Family    string   `yaml:"family,omitempty"`
	Standard  string   `yaml:"standard,omitempty"`
	System    string   `yaml:"system,omitempty"`
	Tags      []string `yaml:"tags"`
	Title     string   `yaml:"title"`
}

// controlEntry is one control page listed under its family.
type controlEntry struct {
	key  string
	name string
	page string
}

type family struct {
	standard string
	key      string
	page     string
	controls []controlEntry
}

type generator struct {
	cert *model.Certification
	opts Options
	book *Book

	taken          map[string]bool
	systemPages    map[string]string
	componentPages map[model.Owner]string
}

// Slug returns the content page name for the joined parts.
func Slug(parts ...string) string {
	return slug.Make(strings.Join(parts, "-"))
}

func (g *generator) build() error {
	g.taken = make(map[string]bool)
	families, err := g.buildStandards()
	if err != nil {
		return err
	}
	g.nameSystems()
	if err := g.buildSystems(); err != nil {
		return err
	}
	summary := g.summary(families)
	g.book.pages["SUMMARY.md"] = summary
	g.book.pages["README.md"] = summary
	return nil
}

// claim reserves a page name beneath content/ for dir/base. Slugs of
// different keys can coincide ("a/b-c" and "a-b/c"); later claims get a
// numeric suffix and a page-collision diagnostic.
func (g *generator) claim(dir, base string, d certification.Diagnostic) string {
	want := path.Join(dir, base+".md")
	name := want
	for n := 2; g.taken[name]; n++ {
		name = path.Join(dir, fmt.Sprintf("%s-%d.md", base, n))
	}
	g.taken[name] = true
	if name != want {
		d.Kind = certification.PageCollision
		d.Certification = g.cert.Name
		d.Detail = fmt.Sprintf("content/%s taken, wrote content/%s", want, name)
		g.book.diagnostics = append(g.book.diagnostics, d)
	}
	return name
}

// ---------------------------------------------------------------------------
// Standards
// ---------------------------------------------------------------------------

// buildStandards writes one page per justified control and one per family,
// and returns the families in natural order for the summary. Family pages
// live in content/families so that a control whose key is its own family
// ("PM", "1.1.1") keeps its page.
func (g *generator) buildStandards() ([]family, error) {
	var families []family
	for _, std := range g.cert.StandardKeys() {
		byFamily := make(map[string]*family)
		for _, ctrl := range g.cert.ControlKeys(std) {
			c := g.cert.Control(std, ctrl)
			if c == nil || len(c.Justifications) == 0 {
				continue
			}
			page := g.claim("", Slug(std, ctrl), certification.Diagnostic{Standard: std, Control: ctrl})
			text, err := g.controlPage(std, ctrl, c)
			if err != nil {
				return nil, err
			}
			g.book.pages["content/"+page] = text

			fam := c.Meta.FamilyFor(ctrl)
			f, ok := byFamily[fam]
			if !ok {
				f = &family{standard: std, key: fam}
				byFamily[fam] = f
			}
			f.controls = append(f.controls, controlEntry{key: ctrl, name: c.Meta.Name, page: page})
		}
		for _, fam := range natsort.Keys(byFamily) {
			f := byFamily[fam]
			f.page = g.claim("families", Slug(std, fam), certification.Diagnostic{Standard: std})
			text, err := g.familyPage(f)
			if err != nil {
				return nil, err
			}
			g.book.pages["content/"+f.page] = text
			families = append(families, *f)
		}
	}
	return families, nil
}

func (g *generator) familyPage(f *family) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s\n\n", f.standard, f.key)
	for _, c := range f.controls {
		b.WriteString(link(controlTitle(c.key, c.name), "../"+c.page))
	}
	return page(pageMeta{
		Family:   f.key,
		Standard: f.standard,
		Tags:     []string{"masonry/family"},
		Title:    f.standard + " - " + f.key,
	}, b.String())
}

func (g *generator) controlPage(std, ctrl string, c *model.Control) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", controlTitle(ctrl, c.Meta.Name))
	if c.Meta.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(c.Meta.Description))
	}

	justifications := append([]model.Justification(nil), c.Justifications...)
	sort.SliceStable(justifications, func(i, j int) bool {
		x, y := justifications[i], justifications[j]
		if x.System != y.System {
			return natsort.Less(x.System, y.System)
		}
		return natsort.Less(x.Component, y.Component)
	})

	lastSystem := "\x00"
	for _, j := range justifications {
		if j.System != lastSystem {
			fmt.Fprintf(&b, "\n## %s\n", g.systemName(j.System))
			lastSystem = j.System
		}
		fmt.Fprintf(&b, "\n### %s\n\n", g.componentName(j.System, j.Component))
		if j.ImplementationStatus != "" {
			fmt.Fprintf(&b, "**Implementation status:** %s\n\n", j.ImplementationStatus)
		}
		b.WriteString(Narrative(j.Narrative))
		for _, ref := range j.References {
			target := ref
			if ref.Verification != "" {
				v, ok := g.cert.Verification(ref)
				if !ok {
					g.book.diagnostics = append(g.book.diagnostics, certification.Diagnostic{
						Kind:          certification.MissingCrossReference,
						Certification: g.cert.Name,
						Standard:      std,
						Control:       ctrl,
						System:        ref.System,
						Component:     ref.Component,
						Detail:        "verification " + ref.Verification,
					})
					continue
				}
				target = v
			}
			if target.Location() == "" {
				continue
			}
			b.WriteString(g.element(target))
		}
	}
	return page(pageMeta{
		Control:  ctrl,
		Family:   c.Meta.FamilyFor(ctrl),
		Standard: std,
		Tags:     []string{"masonry/control"},
		Title:    controlTitle(ctrl, c.Meta.Name),
	}, b.String())
}

// Narrative renders plain text verbatim and sections as "label. text" lines
// in natural label order.
func Narrative(n model.Narrative) string {
	switch n.Kind() {
	case model.NarrativePlain:
		if n.Text() == "" {
			return ""
		}
		return strings.TrimRight(n.Text(), "\n") + "\n"
	case model.NarrativeSectioned:
		var b strings.Builder
		for _, label := range n.Labels() {
			fmt.Fprintf(&b, "%s. %s\n", label, strings.TrimSpace(n.Section(label)))
		}
		return b.String()
	}
	return ""
}

// ---------------------------------------------------------------------------
// Systems and components
// ---------------------------------------------------------------------------

// nameSystems claims page names for every system and component in natural
// order.
func (g *generator) nameSystems() {
	g.systemPages = make(map[string]string)
	g.componentPages = make(map[model.Owner]string)
	for _, sys := range g.cert.SystemKeys() {
		g.systemPages[sys] = g.claim("", Slug(sys), certification.Diagnostic{System: sys})
		for _, comp := range g.cert.ComponentKeys(sys) {
			owner := model.Owner{System: sys, Component: comp}
			g.componentPages[owner] = g.claim("", Slug(sys, comp), certification.Diagnostic{System: sys, Component: comp})
		}
	}
}

func (g *generator) buildSystems() error {
	for _, sys := range g.cert.SystemKeys() {
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n## Components\n\n", g.systemName(sys))
		for _, comp := range g.cert.ComponentKeys(sys) {
			pageName := g.componentPages[model.Owner{System: sys, Component: comp}]
			b.WriteString(link(g.componentName(sys, comp), pageName))

			text, err := g.componentPage(sys, comp)
			if err != nil {
				return err
			}
			g.book.pages["content/"+pageName] = text
		}
		text, err := page(pageMeta{
			System: sys,
			Tags:   []string{"masonry/system"},
			Title:  g.systemName(sys),
		}, b.String())
		if err != nil {
			return err
		}
		g.book.pages["content/"+g.systemPages[sys]] = text
	}
	return nil
}

func (g *generator) componentPage(sys, comp string) (string, error) {
	c, _ := g.cert.Component(sys, comp)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", g.componentName(sys, comp))

	if len(c.References) > 0 {
		refs := append([]model.Reference(nil), c.References...)
		sort.SliceStable(refs, func(i, j int) bool { return natsort.Less(refs[i].Title(), refs[j].Title()) })
		b.WriteString("\n## References\n")
		for _, ref := range refs {
			b.WriteString(g.element(ref))
		}
	}
	if len(c.Verifications) > 0 {
		b.WriteString("\n## Verifications\n")
		for _, key := range natsort.Keys(c.Verifications) {
			b.WriteString(g.element(c.Verifications[key]))
		}
	}
	return page(pageMeta{
		Component: comp,
		System:    sys,
		Tags:      []string{"masonry/component"},
		Title:     g.componentName(sys, comp),
	}, b.String())
}

// ---------------------------------------------------------------------------
// Summary
// ---------------------------------------------------------------------------

func (g *generator) summary(families []family) string {
	var b strings.Builder
	if p := strings.TrimRight(g.opts.Preamble, "\n"); p != "" {
		b.WriteString(p + "\n\n")
	} else {
		b.WriteString("# Summary\n\n")
	}

	b.WriteString("## Standards\n\n")
	for _, f := range families {
		b.WriteString(link(f.standard+" - "+f.key, "content/"+f.page))
		for _, c := range f.controls {
			b.WriteString("\t" + link(controlTitle(c.key, c.name), "content/"+c.page))
		}
	}

	b.WriteString("\n## Systems\n\n")
	for _, sys := range g.cert.SystemKeys() {
		b.WriteString(link(g.systemName(sys), "content/"+g.systemPages[sys]))
		for _, comp := range g.cert.ComponentKeys(sys) {
			compPage := g.componentPages[model.Owner{System: sys, Component: comp}]
			b.WriteString("\t" + link(g.componentName(sys, comp), "content/"+compPage))
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// element renders a reference as a link or an embedded image. Local
// locations are rewritten to /artifacts/<path> and queued for copying.
func (g *generator) element(ref model.Reference) string {
	loc := ref.Location()
	if loc != "" && !ref.IsRemote() {
		rel := export.ArtifactPath(loc)
		loc = "/artifacts/" + rel
		if g.opts.SourceDir != "" {
			src := filepath.FromSlash(ref.Location())
			if !filepath.IsAbs(src) {
				src = filepath.Join(g.opts.SourceDir, src)
			}
			g.book.artifacts[path.Join("artifacts", rel)] = src
		}
	}
	if ref.IsImage() {
		return fmt.Sprintf("\n![%s](%s)\n", ref.Title(), loc)
	}
	return fmt.Sprintf("\n[%s](%s)\n", ref.Title(), loc)
}

func (g *generator) systemName(sys string) string {
	if s, ok := g.cert.Components[sys]; ok && s.Name != "" {
		return s.Name
	}
	return sys
}

func (g *generator) componentName(sys, comp string) string {
	if c, ok := g.cert.Component(sys, comp); ok && c.Name != "" {
		return c.Name
	}
	return comp
}

func controlTitle(key, name string) string {
	if name == "" {
		return key
	}
	return key + " - " + name
}

func link(text, target string) string {
	return fmt.Sprintf("* [%s](%s)\n", text, target)
}

func page(meta pageMeta, body string) (string, error) {
	data, err := frontmatter.Write(meta, body)
	if err != nil {
		return "", fmt.Errorf("page %s: %w", meta.Title, err)
	}
	return string(data), nil
}

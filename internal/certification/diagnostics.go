package certification

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"masonry/internal/natsort"
)

// Kind classifies a diagnostic. Every kind is non-fatal.
type Kind string

const (
	MissingJustifications Kind = "missing-justifications"
	MissingControlInfo    Kind = "missing-control-info"
	MissingStandard       Kind = "missing-standard"
	MissingCrossReference Kind = "missing-cross-reference"
	MissingArtifact       Kind = "missing-artifact"
	PageCollision         Kind = "page-collision"
)

// Diagnostic records one gap found while resolving or rendering a
// certification. Unused fields are empty.
type Diagnostic struct {
	Kind          Kind
	Certification string
	Standard      string
	Control       string
	System        string
	Component     string
	Detail        string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: certification %s", d.Kind, d.Certification)
	if d.Standard != "" {
		fmt.Fprintf(&b, " standard %s", d.Standard)
	}
	if d.Control != "" {
		fmt.Fprintf(&b, " control %s", d.Control)
	}
	if d.System != "" || d.Component != "" {
		fmt.Fprintf(&b, " component %s/%s", d.System, d.Component)
	}
	if d.Detail != "" {
		b.WriteString(": " + d.Detail)
	}
	return b.String()
}

func (d Diagnostic) attrs() []any {
	attrs := []any{"kind", string(d.Kind), "certification", d.Certification}
	for _, kv := range [][2]string{
		{"standard", d.Standard},
		{"control", d.Control},
		{"system", d.System},
		{"component", d.Component},
		{"detail", d.Detail},
	} {
		if kv[1] != "" {
			attrs = append(attrs, kv[0], kv[1])
		}
	}
	return attrs
}

// Diagnostics is an ordered collector safe for concurrent Add.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Add appends d.
func (c *Diagnostics) Add(d ...Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d...)
	c.mu.Unlock()
}

// Len returns the number of diagnostics.
func (c *Diagnostics) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Items returns diagnostics in the order they were added.
func (c *Diagnostics) Items() []Diagnostic {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}

// OfKind returns the diagnostics of one kind in insertion order.
func (c *Diagnostics) OfKind(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Items() {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Sorted returns diagnostics ordered by kind, then location. Insertion
// order breaks ties.
func (c *Diagnostics) Sorted() []Diagnostic {
	items := c.Items()
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		for _, p := range [][2]string{
			{string(a.Kind), string(b.Kind)},
			{a.Certification, b.Certification},
			{a.Standard, b.Standard},
			{a.Control, b.Control},
			{a.System, b.System},
			{a.Component, b.Component},
		} {
			if p[0] != p[1] {
				return natsort.Less(p[0], p[1])
			}
		}
		return false
	})
	return items
}

// Log emits one warning per diagnostic in insertion order.
func (c *Diagnostics) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, d := range c.Items() {
		logger.Warn(messageFor(d.Kind), d.attrs()...)
	}
}

func messageFor(k Kind) string {
	switch k {
	case MissingJustifications:
		return "certification is missing control justifications"
	case MissingControlInfo:
		return "standard does not define control"
	case MissingStandard:
		return "standard not found"
	case MissingCrossReference:
		return "reference points at an unknown verification"
	case MissingArtifact:
		return "local artifact not found"
	case PageCollision:
		return "page name already taken, renamed"
	}
	return string(k)
}

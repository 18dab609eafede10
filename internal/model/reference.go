package model

import "strings"

// Reference is a piece of evidence or a citation: a document, diagram,
// screenshot or URL. Inside a justification it usually points at one of a
// component's verifications by (System, Component, Verification) instead of
// carrying its own location.
//
// Fields are declared in alphabetical order of their YAML keys; exported
// snapshots rely on that for stable key order.
type Reference struct {
	Component    string `yaml:"component,omitempty"`
	Name         string `yaml:"name,omitempty"`
	Path         string `yaml:"path,omitempty"`
	System       string `yaml:"system,omitempty"`
	Type         string `yaml:"type,omitempty"`
	URL          string `yaml:"url,omitempty"`
	Verification string `yaml:"verification,omitempty"`
}

// Tag records the owning system and component on r when r does not name
// them itself. Explicit values are never overwritten, so tagging twice is
// the same as tagging once.
func (r *Reference) Tag(system, component string) {
	if r.System == "" {
		r.System = system
	}
	if r.Component == "" {
		r.Component = component
	}
}

// Location is the path if one is set, otherwise the URL.
func (r Reference) Location() string {
	if r.Path != "" {
		return r.Path
	}
	return r.URL
}

// SetLocation rewrites whichever of Path or URL currently holds the location.
func (r *Reference) SetLocation(loc string) {
	if r.Path != "" || r.URL == "" {
		r.Path = loc
		return
	}
	r.URL = loc
}

// IsRemote reports whether the location is an http(s) URL. The decision is
// made on the location itself, never on Type.
func (r Reference) IsRemote() bool {
	return IsRemoteLocation(r.Location())
}

// IsImage reports whether the reference should be embedded as a picture.
func (r Reference) IsImage() bool {
	return strings.EqualFold(strings.TrimSpace(r.Type), "image")
}

// IsRemoteLocation reports whether loc starts with an http:// or https://
// scheme (case-insensitive).
func IsRemoteLocation(loc string) bool {
	l := strings.ToLower(strings.TrimSpace(loc))
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Title is the display name, falling back to the location.
func (r Reference) Title() string {
	if r.Name != "" {
		return r.Name
	}
	if loc := r.Location(); loc != "" {
		return loc
	}
	return r.Verification
}

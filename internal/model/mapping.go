package model

// mapping.go — the justification index: (standard, control) → the
// components that claim to satisfy it.
//
// Each component contributes exactly one owner per claimed control. Systems
// and the resolver fold those single-owner mappings together with Merge, so
// several components claiming the same control accumulate in one list.

// Owner identifies a component by its directory-derived keys.
type Owner struct {
	System    string
	Component string
}

// JustificationMapping is standard key → control key → owners, in the
// order they were merged.
type JustificationMapping map[string]map[string][]Owner

// Add appends one owner for (standard, control).
func (m JustificationMapping) Add(standard, control string, owner Owner) {
	controls, ok := m[standard]
	if !ok {
		controls = make(map[string][]Owner)
		m[standard] = controls
	}
	controls[control] = append(controls[control], owner)
}

// Lookup returns the owners for (standard, control), nil when none claim it.
func (m JustificationMapping) Lookup(standard, control string) []Owner {
	return m[standard][control]
}

// Len counts (standard, control) cells.
func (m JustificationMapping) Len() int {
	n := 0
	for _, controls := range m {
		n += len(controls)
	}
	return n
}

// Merge returns a new mapping holding every owner of a followed by every
// owner of b. Neither input is modified.
func Merge(a, b JustificationMapping) JustificationMapping {
	out := make(JustificationMapping, len(a)+len(b))
	for _, src := range []JustificationMapping{a, b} {
		for standard, controls := range src {
			for control, owners := range controls {
				for _, o := range owners {
					out.Add(standard, control, o)
				}
			}
		}
	}
	return out
}

// MergeAll folds mappings left to right with Merge.
func MergeAll(mappings ...JustificationMapping) JustificationMapping {
	out := JustificationMapping{}
	for _, m := range mappings {
		out = Merge(out, m)
	}
	return out
}

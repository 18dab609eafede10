package export

// artifacts.go — relocation of locally stored evidence into an export tree.
//
// A reference whose location is a relative path is resolved against the
// directory of the component that owns it. After relocation the file lives at
// <exportDir>/<system>/<component>/<path> and the reference points at
// <system>/<component>/<path>, always slash separated.

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"masonry/internal/model"
)

// Outcome says what RelocateArtifact did with one reference.
type Outcome int

const (
	// NoLocation: the reference has neither path nor url.
	NoLocation Outcome = iota
	// Remote: http(s) location, left untouched.
	Remote
	// Missing: local location that does not exist on disk, left untouched.
	Missing
	// Copied: file copied and reference rewritten.
	Copied
	// Unchanged: destination already identical, reference rewritten.
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case NoLocation:
		return "no-location"
	case Remote:
		return "remote"
	case Missing:
		return "missing"
	case Copied:
		return "copied"
	case Unchanged:
		return "unchanged"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Relocated reports whether the reference was rewritten.
func (o Outcome) Relocated() bool { return o == Copied || o == Unchanged }

// RelocateArtifact copies the local file behind ref (relative to srcDir)
// into exportDir and returns the rewritten reference. Remote and missing
// locations come back unmodified; only I/O failures on an existing file are
// errors.
func RelocateArtifact(ref model.Reference, srcDir, exportDir, system, component string) (model.Reference, Outcome, error) {
	loc := ref.Location()
	if strings.TrimSpace(loc) == "" {
		return ref, NoLocation, nil
	}
	if model.IsRemoteLocation(loc) {
		return ref, Remote, nil
	}

	src := filepath.FromSlash(loc)
	if !filepath.IsAbs(src) {
		src = filepath.Join(srcDir, src)
	}
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return ref, Missing, nil
	}
	if err != nil {
		return ref, NoLocation, fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return ref, Missing, nil
	}

	rel := ArtifactPath(loc)
	dst := filepath.Join(exportDir, system, component, filepath.FromSlash(rel))
	copied, err := CopyFile(src, dst)
	if err != nil {
		return ref, NoLocation, fmt.Errorf("relocate %s: %w", loc, err)
	}
	ref.SetLocation(path.Join(system, component, rel))
	if copied {
		return ref, Copied, nil
	}
	return ref, Unchanged, nil
}

// ArtifactPath normalises a local location into a slash-separated path that
// stays inside the destination tree. Absolute paths and paths climbing out
// of the component directory keep only their base name.
func ArtifactPath(loc string) string {
	clean := path.Clean(filepath.ToSlash(loc))
	if path.IsAbs(clean) || filepath.IsAbs(loc) || clean == ".." || strings.HasPrefix(clean, "../") {
		return path.Base(clean)
	}
	return clean
}

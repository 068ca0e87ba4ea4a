package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docpub/internal/manifest"
)

// Artifact kinds produced for every published document.
const (
	ArtifactTXT   = "txt"
	ArtifactPDF   = "pdf"
	ArtifactHTML  = "html"  // chunked
	ArtifactHTMLS = "htmls" // single page
	ArtifactIndex = "index.html"
)

// ArtifactKinds lists the kinds checked for completeness, in report order.
var ArtifactKinds = []string{ArtifactTXT, ArtifactPDF, ArtifactHTML, ArtifactHTMLS, ArtifactIndex}

// Artifacts holds the absolute artifact paths of one output directory.
type Artifacts struct {
	TXT   string
	PDF   string
	HTML  string
	HTMLS string
	Index string
}

// ByKind returns the path for an artifact kind.
func (a Artifacts) ByKind(kind string) string {
	switch kind {
	case ArtifactTXT:
		return a.TXT
	case ArtifactPDF:
		return a.PDF
	case ArtifactHTML:
		return a.HTML
	case ArtifactHTMLS:
		return a.HTMLS
	case ArtifactIndex:
		return a.Index
	default:
		return ""
	}
}

// ArtifactsFor applies the naming convention for stem inside dir.
func ArtifactsFor(dir, stem string) Artifacts {
	return Artifacts{
		TXT:   filepath.Join(dir, stem+".txt"),
		PDF:   filepath.Join(dir, stem+".pdf"),
		HTML:  filepath.Join(dir, stem+".html"),
		HTMLS: filepath.Join(dir, stem+"-single.html"),
		Index: filepath.Join(dir, "index.html"),
	}
}

// Output is one document directory under the publication root (or a working directory
// being built for it).
type Output struct {
	Stem    string
	Dirname string
	Source  *Source
	Status  Status
}

// NewOutput describes the output directory at dirname; it need not exist yet.
func NewOutput(dirname string) *Output {
	abs, err := filepath.Abs(dirname)
	if err != nil {
		abs = filepath.Clean(dirname)
	}
	return &Output{
		Stem:    filepath.Base(abs),
		Dirname: abs,
		Status:  StatusOutput,
	}
}

// Artifacts returns the expected artifact paths.
func (o *Output) Artifacts() Artifacts { return ArtifactsFor(o.Dirname, o.Stem) }

// Missing returns the kinds of expected artifacts that are not present.
func (o *Output) Missing() []string {
	arts := o.Artifacts()
	var missing []string
	for _, kind := range ArtifactKinds {
		if _, err := os.Stat(arts.ByKind(kind)); err != nil {
			missing = append(missing, kind)
		}
	}
	return missing
}

// IsComplete reports whether every expected artifact is present.
func (o *Output) IsComplete() bool { return len(o.Missing()) == 0 }

// Exists reports whether the directory exists.
func (o *Output) Exists() bool {
	fi, err := os.Stat(o.Dirname)
	return err == nil && fi.IsDir()
}

// ManifestPath returns the path of the hash-manifest sidecar.
func (o *Output) ManifestPath() string { return filepath.Join(o.Dirname, manifest.FileName) }

// Manifest returns the source hashes recorded at the last successful build. A directory
// without a sidecar yields an empty map, which never matches a real source.
func (o *Output) Manifest() (manifest.Hashes, error) {
	hashes, err := manifest.ReadFile(o.ManifestPath())
	if errors.Is(err, fs.ErrNotExist) {
		return manifest.Hashes{}, nil
	}
	return hashes, err
}

// WriteManifest records the source hashes of a successful build.
func (o *Output) WriteManifest(hashes manifest.Hashes, comments ...string) error {
	return manifest.WriteFile(o.ManifestPath(), hashes, comments...)
}

// Mkdir creates the directory; its parent must already exist.
func (o *Output) Mkdir() error {
	parent := filepath.Dir(o.Dirname)
	if fi, err := os.Stat(parent); err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: parent directory %s", ErrNotFound, parent)
	}
	if err := os.Mkdir(o.Dirname, 0o755); err != nil && !os.IsExist(err) {
		return err
	}
	return nil
}

// Clear removes everything inside the directory, keeping the directory itself.
func (o *Output) Clear() error {
	entries, err := os.ReadDir(o.Dirname)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(o.Dirname, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (o *Output) String() string { return fmt.Sprintf("%s (%s)", o.Stem, o.Dirname) }

package inventory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpub/internal/document"
	"git.home.luguber.info/inful/docpub/internal/util/sets"
)

type sgmlGuesser struct{}

func (sgmlGuesser) Extensions() []string { return []string{".sgml"} }

func (sgmlGuesser) Guess(path string) string {
	if strings.HasSuffix(path, ".sgml") {
		return "Linuxdoc"
	}
	return ""
}

type tree struct {
	t      *testing.T
	pub    string
	source string
}

func newTree(t *testing.T) *tree {
	t.Helper()
	root := t.TempDir()
	tr := &tree{t: t, pub: filepath.Join(root, "pub"), source: filepath.Join(root, "src")}
	require.NoError(t, os.Mkdir(tr.pub, 0o755))
	require.NoError(t, os.Mkdir(tr.source, 0o755))
	return tr
}

func (tr *tree) write(path, content string) string {
	tr.t.Helper()
	require.NoError(tr.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tr.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (tr *tree) scan() *Inventory {
	tr.t.Helper()
	inv, err := New(tr.pub, []string{tr.source}, sgmlGuesser{})
	require.NoError(tr.t, err)
	return inv
}

// publish fakes a successful build of stem: all artifacts plus a manifest of the current source.
func (tr *tree) publish(stem string) {
	tr.t.Helper()
	src, err := document.NewSource(filepath.Join(tr.source, stem+".sgml"), sgmlGuesser{})
	require.NoError(tr.t, err)
	out := document.NewOutput(filepath.Join(tr.pub, stem))
	require.NoError(tr.t, out.Mkdir())
	for _, kind := range document.ArtifactKinds {
		tr.write(out.Artifacts().ByKind(kind), kind)
	}
	require.NoError(tr.t, out.WriteManifest(src.Hashes))
}

func TestInventory_Lifecycle(t *testing.T) {
	tr := newTree(t)
	srcFile := tr.write(filepath.Join(tr.source, "Foo-HOWTO.sgml"), "<!doctype linuxdoc system>\n")

	inv := tr.scan()
	assert.Equal(t, []string{"Foo-HOWTO"}, inv.New.Keys())
	assert.Empty(t, inv.Published)

	tr.publish("Foo-HOWTO")
	inv = tr.scan()
	assert.Equal(t, []string{"Foo-HOWTO"}, inv.Published.Keys())
	assert.Empty(t, inv.New)
	assert.Empty(t, inv.Stale)
	assert.Empty(t, inv.Broken)
	assert.Same(t, inv.Outputs["Foo-HOWTO"], inv.Published["Foo-HOWTO"].Output)
	assert.Same(t, inv.Sources["Foo-HOWTO"], inv.Outputs["Foo-HOWTO"].Source)

	pdf := filepath.Join(tr.pub, "Foo-HOWTO", "Foo-HOWTO.pdf")
	require.NoError(t, os.Remove(pdf))
	inv = tr.scan()
	assert.Equal(t, []string{"Foo-HOWTO"}, inv.Broken.Keys())
	assert.Empty(t, inv.Stale)
	tr.write(pdf, "pdf")

	tr.write(srcFile, "<!doctype linuxdoc system>\nedited\n")
	inv = tr.scan()
	assert.Equal(t, []string{"Foo-HOWTO"}, inv.Stale.Keys())
	assert.Equal(t, []string{"Foo-HOWTO.sgml"}, inv.Stale["Foo-HOWTO"].Changed)

	require.NoError(t, os.Remove(srcFile))
	inv = tr.scan()
	assert.Equal(t, []string{"Foo-HOWTO"}, inv.Orphan.Keys())
	assert.Empty(t, inv.Published)
	assert.True(t, inv.Orphan["Foo-HOWTO"].Status.Has(document.StatusOrphan))
}

func TestInventory_StalenessIgnoresMtime(t *testing.T) {
	tr := newTree(t)
	srcFile := tr.write(filepath.Join(tr.source, "Foo.sgml"), "abcdef")
	tr.publish("Foo")

	future := time.Now().Add(48 * time.Hour)
	require.NoError(t, os.Chtimes(srcFile, future, future))
	inv := tr.scan()
	assert.Empty(t, inv.Stale, "touching mtime must not mark stale")

	info, err := os.Stat(srcFile)
	require.NoError(t, err)
	tr.write(srcFile, "abcdeX")
	require.NoError(t, os.Chtimes(srcFile, info.ModTime(), info.ModTime()))
	inv = tr.scan()
	assert.Equal(t, []string{"Foo"}, inv.Stale.Keys(), "one changed byte marks stale")
}

func TestInventory_MissingManifestIsStale(t *testing.T) {
	tr := newTree(t)
	tr.write(filepath.Join(tr.source, "Foo.sgml"), "x")
	tr.publish("Foo")
	require.NoError(t, os.Remove(filepath.Join(tr.pub, "Foo", ".LDP-source-MD5SUMS")))

	inv := tr.scan()
	assert.Equal(t, []string{"Foo"}, inv.Stale.Keys())
}

func TestInventory_BrokenAndStale(t *testing.T) {
	tr := newTree(t)
	srcFile := tr.write(filepath.Join(tr.source, "Foo.sgml"), "x")
	tr.publish("Foo")
	require.NoError(t, os.Remove(filepath.Join(tr.pub, "Foo", "index.html")))
	tr.write(srcFile, "y")

	inv := tr.scan()
	assert.Equal(t, []string{"Foo"}, inv.Broken.Keys())
	assert.Equal(t, []string{"Foo"}, inv.Stale.Keys())
	st := inv.Published["Foo"].Status
	assert.True(t, st.Has(document.StatusPublished|document.StatusStale|document.StatusBroken))
	assert.False(t, st.Has(document.StatusNew))

	problems, err := inv.Stems(ClassProblems)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, problems)
}

func TestInventory_PartitionAndIdempotence(t *testing.T) {
	tr := newTree(t)
	for _, stem := range []string{"alpha", "Beta", "gamma", "delta"} {
		tr.write(filepath.Join(tr.source, stem+".sgml"), stem)
	}
	tr.publish("Beta")
	tr.publish("gamma")
	require.NoError(t, os.Mkdir(filepath.Join(tr.pub, "Omega"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(tr.pub, "zeta"), 0o755))

	first := tr.scan()
	all := sets.FromKeys(first.Sources).Union(sets.FromKeys(first.Outputs))
	for stem := range all {
		n := 0
		if first.New.Has(stem) {
			n++
		}
		if first.Orphan.Has(stem) {
			n++
		}
		if first.Published.Has(stem) {
			n++
		}
		assert.Equal(t, 1, n, "stem %s must be in exactly one primary class", stem)
	}

	second := tr.scan()
	for _, class := range Classes() {
		a, err := first.Stems(class)
		require.NoError(t, err)
		b, err := second.Stems(class)
		require.NoError(t, err)
		assert.Equal(t, a, b, class)
	}

	again, err := Classify(first.Sources, first.Outputs)
	require.NoError(t, err)
	assert.Equal(t, first.New.Keys(), again.New.Keys())
	assert.Equal(t, first.Published["Beta"].Status, again.Published["Beta"].Status)
}

func TestInventory_Classes(t *testing.T) {
	tr := newTree(t)
	tr.write(filepath.Join(tr.source, "New.sgml"), "n")
	tr.write(filepath.Join(tr.source, "Pub.sgml"), "p")
	tr.write(filepath.Join(tr.source, "Old.sgml"), "o")
	tr.publish("Pub")
	tr.publish("Old")
	tr.write(filepath.Join(tr.source, "Old.sgml"), "changed")
	require.NoError(t, os.Mkdir(filepath.Join(tr.pub, "Gone"), 0o755))

	inv := tr.scan()
	cases := map[string][]string{
		ClassNew:       {"New"},
		ClassOrphan:    {"Gone"},
		"orphaned":     {"Gone"},
		ClassPublished: {"Old", "Pub"},
		ClassStale:     {"Old"},
		ClassProblems:  {"Gone", "Old"},
		ClassWork:      {"Gone", "New", "Old"},
		ClassAll:       {"Gone", "New", "Old", "Pub"},
		ClassSources:   {"New", "Old", "Pub"},
		ClassOutputs:   {"Gone", "Old", "Pub"},
	}
	for class, want := range cases {
		got, err := inv.Stems(class)
		require.NoError(t, err)
		assert.Equal(t, want, got, class)
	}

	_, err := inv.Stems("bogus")
	require.Error(t, err)

	srcs, err := inv.SourcesOf(ClassWork)
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	assert.Equal(t, "New", srcs[0].Stem)
	assert.Equal(t, "Old", srcs[1].Stem)

	entries, err := inv.Entries(ClassOrphan, ClassNew)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].Source)
	assert.True(t, entries[0].Status().Has(document.StatusOrphan))

	assert.Contains(t, inv.Summary(), "1 new")
	assert.Contains(t, inv.Summary(), "1 stale")
}

func TestInventory_MissingPubdir(t *testing.T) {
	tr := newTree(t)
	_, err := New(filepath.Join(tr.pub, "missing"), []string{tr.source}, sgmlGuesser{})
	require.ErrorIs(t, err, document.ErrNotFound)
}

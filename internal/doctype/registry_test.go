package doctype

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpub/internal/build"
	"git.home.luguber.info/inful/docpub/internal/document"
)

var _ document.Guesser = (*Registry)(nil)

func defaultRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Default()
	require.NoError(t, err)
	return r
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	r := defaultRegistry(t)
	assert.Equal(t, []string{"Linuxdoc", "DocbookSGML", "Docbook4XML", "Docbook5XML", "AsciiDoc", "Markdown", "RestructuredText"}, r.Names())
	assert.Equal(t, []string{".adoc", ".md", ".rst", ".sgml", ".txt", ".xml"}, r.Extensions())

	for _, dt := range r.All() {
		for _, kind := range []string{StepHTMLS, StepTXT, StepPDF, StepHTML} {
			_, ok := dt.Graph.Step(kind)
			assert.True(t, ok, "%s lacks step %s", dt.Name, kind)
		}
	}
	_, ok := r.Lookup("Docbook4XML")
	assert.True(t, ok)
	_, ok = r.Lookup("Texinfo")
	assert.False(t, ok)
}

func TestGuess(t *testing.T) {
	r := defaultRegistry(t)
	dir := t.TempDir()

	tests := []struct {
		name, file, content, want string
	}{
		{"linuxdoc", "a.sgml", "<!DOCTYPE linuxdoc SYSTEM>\n<article>", "Linuxdoc"},
		{"docbook sgml", "b.sgml", `<!DOCTYPE book PUBLIC "-//OASIS//DTD DocBook V4.1//EN">`, "DocbookSGML"},
		{"docbook4 xml", "c.xml", `<?xml version="1.0"?><!DOCTYPE article PUBLIC "-//OASIS//DTD DocBook XML V4.5//EN" "x">`, "Docbook4XML"},
		{"docbook5 xml", "d.xml", `<article xmlns="http://docbook.org/ns/docbook" version="5.0">`, "Docbook5XML"},
		{"asciidoc by extension", "e.txt", "= Title", "AsciiDoc"},
		{"markdown", "f.md", "# Title", "Markdown"},
		{"restructuredtext by extension", "Foo-HOWTO.rst", "Title\n=====\n", "RestructuredText"},
		{"no signature", "g.xml", "<html/>", ""},
		{"unknown extension", "h.tex", `\documentclass{article}`, ""},
		{"no extension", "README", "text", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Guess(write(t, dir, tt.file, tt.content)))
		})
	}
}

func TestGuess_EarliestSignatureWins(t *testing.T) {
	r := defaultRegistry(t)
	dir := t.TempDir()
	content := `<!-- -//OASIS//DTD DocBook V4.2//EN --> <!doctype linuxdoc system>`
	assert.Equal(t, "DocbookSGML", r.Guess(write(t, dir, "x.sgml", content)))

	content = `<!doctype linuxdoc system> -//OASIS//DTD DocBook V4.2//EN`
	assert.Equal(t, "Linuxdoc", r.Guess(write(t, dir, "y.sgml", content)))
}

func TestGuess_SignatureBeyondWindow(t *testing.T) {
	r := defaultRegistry(t)
	content := strings.Repeat(" ", signatureWindow) + "<!doctype linuxdoc system>"
	assert.Empty(t, r.Guess(write(t, t.TempDir(), "late.sgml", content)))
}

func TestNewRegistry_RejectsInvalidGraphs(t *testing.T) {
	def := Definition{
		Name:       "Loop",
		Extensions: []string{".loop"},
		Steps: []*build.Step{
			{Name: "a", DependsOn: []string{"b"}, Commands: func(*build.Job) []build.Command { return nil }},
			{Name: "b", DependsOn: []string{"a"}, Commands: func(*build.Job) []build.Command { return nil }},
		},
	}
	_, err := NewRegistry(def)
	require.Error(t, err)
	assert.True(t, errors.Is(err, build.ErrCycle))

	_, err = NewRegistry(Linuxdoc(), Linuxdoc())
	require.Error(t, err)

	_, err = NewRegistry(Definition{Name: "NoExt", Steps: Linuxdoc().Steps})
	require.Error(t, err)
}

func TestResolveTools(t *testing.T) {
	r := defaultRegistry(t)
	tools := r.ResolveTools(map[string]string{"linuxdoc_htmldoc": "/opt/bin/htmldoc", "extra": "x"})
	assert.Equal(t, "/opt/bin/htmldoc", tools["linuxdoc_htmldoc"])
	assert.Equal(t, "x", tools["extra"])
	assert.NotEmpty(t, tools["linuxdoc_sgml2html"])
	assert.Equal(t, "/usr/share/xml/docbook/schema/rng/5.0/docbook.rng", tools["docbook5xml_rng"])
}

func TestLinuxdocScript(t *testing.T) {
	r := defaultRegistry(t)
	dt, ok := r.Lookup("Linuxdoc")
	require.True(t, ok)

	var buf bytes.Buffer
	job := &build.Job{
		Stem: "Foo-HOWTO", Doctype: dt.Name, Source: "/src/Foo-HOWTO.sgml", SourceDir: "/src",
		OutputDir: "/build/Linuxdoc/Foo-HOWTO",
		Tools:     map[string]string{"linuxdoc_sgml2html": "/usr/bin/sgml2html"},
	}
	_, err := build.NewRunner(build.NewScriptSink(&buf)).Run(context.Background(), job, dt.Graph, dt.Requirements)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "/usr/bin/sgml2html --split=0 /src/Foo-HOWTO.sgml\nmv -- Foo-HOWTO.html Foo-HOWTO-single.html\n")
	assert.Contains(t, out, "linuxdoc_html2text -style pretty -nobs Foo-HOWTO-single.html > Foo-HOWTO.txt\n")
	assert.Contains(t, out, "ln -sf -- Foo-HOWTO.html index.html\n")
	assert.Less(t, strings.Index(out, "step: htmls"), strings.Index(out, "step: html\n"))
	assert.Less(t, strings.Index(out, "step: html\n"), strings.Index(out, "step: index"))
}

func TestRestructuredTextScript(t *testing.T) {
	dt, ok := defaultRegistry(t).Lookup("RestructuredText")
	require.True(t, ok)

	var buf bytes.Buffer
	job := &build.Job{
		Stem: "Foo-HOWTO", Doctype: dt.Name, Source: "/src/Foo-HOWTO.rst", SourceDir: "/src",
		OutputDir: "/build/RestructuredText/Foo-HOWTO",
		Tools:     map[string]string{"rst_rst2html": "/usr/bin/rst2html"},
	}
	_, err := build.NewRunner(build.NewScriptSink(&buf)).Run(context.Background(), job, dt.Graph, dt.Requirements)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "/usr/bin/rst2html /src/Foo-HOWTO.rst Foo-HOWTO-single.html\n")
	assert.Contains(t, out, "rst_html2text -style pretty -nobs Foo-HOWTO-single.html > Foo-HOWTO.txt\n")
	assert.Contains(t, out, "cp -- Foo-HOWTO-single.html Foo-HOWTO.html\n")
	assert.Contains(t, out, "ln -sf -- Foo-HOWTO.html index.html\n")
}

func TestDocbook4XMLIntermediates(t *testing.T) {
	dt, ok := defaultRegistry(t).Lookup("Docbook4XML")
	require.True(t, ok)
	fo, ok := dt.Graph.Step(stepFO)
	require.True(t, ok)
	job := &build.Job{Stem: "Bar"}
	assert.Equal(t, []string{"Bar.fo"}, fo.IntermediatesFor(job))
	pdf, ok := dt.Graph.Step(StepPDF)
	require.True(t, ok)
	assert.NotNil(t, pdf.Fallback)
}

func TestResourcesStep(t *testing.T) {
	src := t.TempDir()
	docdir := filepath.Join(src, "Baz")
	require.NoError(t, os.MkdirAll(filepath.Join(docdir, "images"), 0o755))

	step := resourcesStep()
	cmds := step.Commands(&build.Job{Stem: "Baz", SourceDir: docdir})
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"cp", "-a", "--", filepath.Join(docdir, "images"), "."}, cmds[0].Argv)

	assert.Empty(t, step.Commands(&build.Job{Stem: "Single", SourceDir: src}))
}

func TestDescribe(t *testing.T) {
	r := defaultRegistry(t)
	descs := r.Describe(map[string]string{})
	require.Len(t, descs, len(r.Names()))

	data, err := yaml.Marshal(descs[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Linuxdoc")
	assert.Contains(t, string(data), "linuxdoc_sgml2html: sgml2html")

	var pdfFallback bool
	for _, s := range descs[2].Steps {
		if s.Name == StepPDF {
			pdfFallback = s.Fallback
		}
	}
	assert.True(t, pdfFallback)
}

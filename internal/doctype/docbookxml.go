package doctype

import "git.home.luguber.info/inful/docpub/internal/build"

const (
	stepValidated = "validated"
	stepFO        = "fo"
)

// xmlTools names the tool keys of one DocBook XML toolchain.
type xmlTools struct {
	xmllint, xsltproc, html2text, fop, dblatex string
	xslSingle, xslChunk, xslPrint              string
}

func newXMLTools(prefix string) xmlTools {
	return xmlTools{
		xmllint:   prefix + "_xmllint",
		xsltproc:  prefix + "_xsltproc",
		html2text: prefix + "_html2text",
		fop:       prefix + "_fop",
		dblatex:   prefix + "_dblatex",
		xslSingle: prefix + "_xslsingle",
		xslChunk:  prefix + "_xslchunk",
		xslPrint:  prefix + "_xslprint",
	}
}

func (t xmlTools) requirements(stylesheets string) []build.Requirement {
	return []build.Requirement{
		exe(t.xmllint, "xmllint"),
		exe(t.xsltproc, "xsltproc"),
		exe(t.html2text, "html2text"),
		exe(t.fop, "fop"),
		exe(t.dblatex, "dblatex"),
		file(t.xslSingle, stylesheets+"/html/docbook.xsl"),
		file(t.xslChunk, stylesheets+"/html/chunk.xsl"),
		file(t.xslPrint, stylesheets+"/fo/docbook.xsl"),
	}
}

// validated is the XInclude-resolved copy of the source every rendering reads.
func validated(j *build.Job) string { return j.File(".validated.xml") }

// xmlSteps is the DocBook XML pipeline shared by the XML based types. input names the
// document fed to xmllint; after names the preparation steps a type runs first.
func xmlSteps(t xmlTools, input func(*build.Job) string, after []string) []*build.Step {
	return []*build.Step{
		resourcesStep(),
		{
			Name:      stepValidated,
			DependsOn: after,
			Commands: func(j *build.Job) []build.Command {
				return []build.Command{
					build.Cmd(j.Tool(t.xmllint), "--nonet", "--noent", "--xinclude", "--postvalid", input(j)).To(validated(j)),
				}
			},
			IntermediatesFor: func(j *build.Job) []string { return []string{validated(j)} },
		},
		{
			Name:      StepHTMLS,
			DependsOn: []string{StepResources, stepValidated},
			Commands: func(j *build.Job) []build.Command {
				return []build.Command{
					build.Cmd(j.Tool(t.xsltproc), "--nonet", "--output", j.File("-single.html"),
						j.Tool(t.xslSingle), validated(j)),
				}
			},
		},
		html2textStep(t.html2text),
		{
			Name:      stepFO,
			DependsOn: []string{stepValidated},
			Commands: func(j *build.Job) []build.Command {
				return []build.Command{
					build.Cmd(j.Tool(t.xsltproc), "--nonet", "--stringparam", "paper.type", "letter",
						"--output", j.File(".fo"), j.Tool(t.xslPrint), validated(j)),
				}
			},
			IntermediatesFor: func(j *build.Job) []string { return []string{j.File(".fo")} },
		},
		{
			Name:      StepPDF,
			DependsOn: []string{StepResources, stepFO},
			Commands: func(j *build.Job) []build.Command {
				return []build.Command{build.Cmd(j.Tool(t.fop), "-fo", j.File(".fo"), "-pdf", j.File(".pdf"))}
			},
			Fallback: func(j *build.Job) []build.Command {
				return []build.Command{
					build.Cmd(j.Tool(t.dblatex), "-F", "xml", "-t", "pdf", "-o", j.File(".pdf"), validated(j)),
				}
			},
		},
		{
			Name:      StepHTML,
			DependsOn: []string{StepResources, stepValidated},
			Commands: func(j *build.Job) []build.Command {
				return []build.Command{
					build.Cmd(j.Tool(t.xsltproc), "--nonet", "--stringparam", "base.dir", "./",
						"--stringparam", "use.id.as.filename", "1", j.Tool(t.xslChunk), validated(j)),
					build.Cmd("ln", "-sf", "--", "index.html", j.File(".html")),
				}
			},
		},
	}
}

func source(j *build.Job) string { return j.Source }

// Docbook4XML builds DocBook 4.x XML documents with xsltproc, rendering PDF through FOP and
// falling back to dblatex.
func Docbook4XML() Definition {
	t := newXMLTools("docbook4xml")
	return Definition{
		Name:       "Docbook4XML",
		FormatName: "DocBook XML 4.x",
		Extensions: []string{".xml"},
		Signatures: []string{
			"-//OASIS//DTD DocBook XML V4.1.2//EN",
			"-//OASIS//DTD DocBook XML V4.2//EN",
			"-//OASIS//DTD DocBook XML V4.3//EN",
			"-//OASIS//DTD DocBook XML V4.4//EN",
			"-//OASIS//DTD DocBook XML V4.5//EN",
		},
		Requirements: t.requirements("/usr/share/xml/docbook/stylesheet/docbook-xsl"),
		Steps:        xmlSteps(t, source, nil),
	}
}

// Docbook5XML builds DocBook 5 documents. The source is checked against the RELAX NG schema
// with jing before the shared XML pipeline runs.
func Docbook5XML() Definition {
	t := newXMLTools("docbook5xml")
	const (
		jing     = "docbook5xml_jing"
		rng      = "docbook5xml_rng"
		stepJing = "jing"
	)
	reqs := append([]build.Requirement{
		exe(jing, "jing"),
		file(rng, "/usr/share/xml/docbook/schema/rng/5.0/docbook.rng"),
	}, t.requirements("/usr/share/xml/docbook/stylesheet/docbook-xsl-ns")...)

	steps := append([]*build.Step{{
		Name: stepJing,
		Commands: func(j *build.Job) []build.Command {
			return []build.Command{build.Cmd(j.Tool(jing), j.Tool(rng), j.Source)}
		},
	}}, xmlSteps(t, source, []string{stepJing})...)

	return Definition{
		Name:         "Docbook5XML",
		FormatName:   "DocBook XML 5.x",
		Extensions:   []string{".xml"},
		Signatures:   []string{"-//OASIS//DTD DocBook V5.0/EN", "http://docbook.org/ns/docbook"},
		Requirements: reqs,
		Steps:        steps,
	}
}

// AsciiDoc converts the source to DocBook 4.5 XML with asciidoc and continues with the
// DocBook XML pipeline.
func AsciiDoc() Definition {
	t := newXMLTools("asciidoc")
	const (
		asciidoc    = "asciidoc_asciidoc"
		stepDocbook = "docbook"
	)
	xml := func(j *build.Job) string { return j.File(".xml") }
	steps := append([]*build.Step{{
		Name: stepDocbook,
		Commands: func(j *build.Job) []build.Command {
			return []build.Command{
				build.Cmd(j.Tool(asciidoc), "-b", "docbook45", "-d", "book", "-o", xml(j), j.Source),
			}
		},
		IntermediatesFor: func(j *build.Job) []string { return []string{xml(j)} },
	}}, xmlSteps(t, xml, []string{stepDocbook})...)

	return Definition{
		Name:         "AsciiDoc",
		FormatName:   "AsciiDoc",
		Extensions:   []string{".txt", ".adoc"},
		Requirements: append([]build.Requirement{exe(asciidoc, "asciidoc")}, t.requirements("/usr/share/xml/docbook/stylesheet/docbook-xsl")...),
		Steps:        steps,
	}
}

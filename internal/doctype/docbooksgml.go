package doctype

import "git.home.luguber.info/inful/docpub/internal/build"

// DocbookSGML builds DocBook 3.x/4.x SGML documents with the jade toolchain. A document index
// is collated first so every rendering can include it.
func DocbookSGML() Definition {
	const (
		jw            = "docbooksgml_jw"
		openjade      = "docbooksgml_openjade"
		collateindex  = "docbooksgml_collateindex"
		html2text     = "docbooksgml_html2text"
		dblatex       = "docbooksgml_dblatex"
		dsl           = "docbooksgml_dsl"
		indexData     = "index_data"
		indexSGML     = "index_sgml"
		blankIndex    = "blank_index"
		indexDataFile = "HTML.index"
	)
	return Definition{
		Name:       "DocbookSGML",
		FormatName: "DocBook SGML 3.x/4.x",
		Extensions: []string{".sgml"},
		Signatures: []string{
			"-//Davenport//DTD DocBook V3.0//EN",
			"-//OASIS//DTD DocBook V3.1//EN",
			"-//OASIS//DTD DocBook V4.1//EN",
			"-//OASIS//DTD DocBook V4.2//EN",
		},
		Requirements: []build.Requirement{
			exe(jw, "jw"),
			exe(openjade, "openjade"),
			exe(collateindex, "collateindex.pl"),
			exe(html2text, "html2text"),
			exe(dblatex, "dblatex"),
			file(dsl, "/usr/share/sgml/docbook/stylesheet/dsssl/modular/html/docbook.dsl"),
		},
		Steps: []*build.Step{
			resourcesStep(),
			{
				Name:          blankIndex,
				Commands:      func(*build.Job) []build.Command { return []build.Command{build.Cmd("touch", "index.sgml")} },
				Intermediates: []string{"index.sgml"},
			},
			{
				Name:      indexData,
				DependsOn: []string{blankIndex},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{
						build.Cmd(j.Tool(openjade), "-t", "sgml", "-V", "html-index", "-d", j.Tool(dsl), j.Source),
					}
				},
				Intermediates: []string{indexDataFile},
			},
			{
				Name:      indexSGML,
				DependsOn: []string{indexData},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{
						build.Cmd(j.Tool(collateindex), "-g", "-t", "Index", "-i", "doc-index", "-o", "index.sgml", indexDataFile),
					}
				},
			},
			{
				Name:      StepHTMLS,
				DependsOn: []string{StepResources, indexSGML},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{
						build.Cmd(j.Tool(jw), "-f", "docbook", "-b", "html", "-d", j.Tool(dsl),
							"-V", "nochunks", "-u", j.Source).To(j.File("-single.html")),
					}
				},
			},
			html2textStep(html2text),
			{
				Name:      StepPDF,
				DependsOn: []string{indexSGML},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{build.Cmd(j.Tool(jw), "-f", "docbook", "-b", "pdf", "-o", ".", j.Source)}
				},
				Fallback: func(j *build.Job) []build.Command {
					return []build.Command{
						build.Cmd(j.Tool(dblatex), "-F", "sgml", "-t", "pdf", "-o", j.File(".pdf"), j.Source),
					}
				},
			},
			{
				Name:      StepHTML,
				DependsOn: []string{StepResources, indexSGML},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{
						build.Cmd(j.Tool(jw), "-f", "docbook", "-b", "html", "-d", j.Tool(dsl), "-o", ".", j.Source),
						build.Cmd("ln", "-sf", "--", "index.html", j.File(".html")),
					}
				},
			},
		},
	}
}

package doctype

import "git.home.luguber.info/inful/docpub/internal/build"

// RestructuredText renders reStructuredText documents with docutils. Like Markdown it has
// no chunked form, so STEM.html is a copy of the single page.
func RestructuredText() Definition {
	const (
		rst2html  = "rst_rst2html"
		html2text = "rst_html2text"
		htmldoc   = "rst_htmldoc"
	)
	return Definition{
		Name:       "RestructuredText",
		FormatName: "reStructuredText",
		Extensions: []string{".rst"},
		Requirements: []build.Requirement{
			exe(rst2html, "rst2html"),
			exe(html2text, "html2text"),
			exe(htmldoc, "htmldoc"),
		},
		Steps: []*build.Step{
			resourcesStep(),
			{
				Name:      StepHTMLS,
				DependsOn: []string{StepResources},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{build.Cmd(j.Tool(rst2html), j.Source, j.File("-single.html"))}
				},
			},
			html2textStep(html2text),
			{
				Name:      StepPDF,
				DependsOn: []string{StepHTMLS},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{
						build.Cmd(j.Tool(htmldoc), "--size", "universal", "-t", "pdf",
							"--firstpage", "p1", "--outfile", j.File(".pdf"), j.File("-single.html")),
					}
				},
			},
			{
				Name:      StepHTML,
				DependsOn: []string{StepHTMLS},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{build.Cmd("cp", "--", j.File("-single.html"), j.File(".html"))}
				},
			},
			indexLinkStep(StepHTML),
		},
	}
}

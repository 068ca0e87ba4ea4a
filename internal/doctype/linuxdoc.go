package doctype

import "git.home.luguber.info/inful/docpub/internal/build"

// Linuxdoc builds SGML documents written against the linuxdoc DTD with the sgmltools suite.
func Linuxdoc() Definition {
	const (
		sgml2html = "linuxdoc_sgml2html"
		html2text = "linuxdoc_html2text"
		htmldoc   = "linuxdoc_htmldoc"
	)
	return Definition{
		Name:       "Linuxdoc",
		FormatName: "Linuxdoc",
		Extensions: []string{".sgml"},
		Signatures: []string{"<!doctype linuxdoc system"},
		Requirements: []build.Requirement{
			exe(sgml2html, "sgml2html"),
			exe(html2text, "html2text"),
			exe(htmldoc, "htmldoc"),
		},
		Steps: []*build.Step{
			resourcesStep(),
			{
				// sgml2html names its output after the source, so the single page is
				// produced first and moved aside before the chunked run.
				Name:      StepHTMLS,
				DependsOn: []string{StepResources},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{
						build.Cmd(j.Tool(sgml2html), "--split=0", j.Source),
						build.Cmd("mv", "--", j.File(".html"), j.File("-single.html")),
					}
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
					return []build.Command{build.Cmd(j.Tool(sgml2html), j.Source)}
				},
			},
			indexLinkStep(StepHTML),
		},
	}
}

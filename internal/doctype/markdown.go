package doctype

import "git.home.luguber.info/inful/docpub/internal/build"

// Markdown renders Markdown documents with pandoc. There is no chunked form, so STEM.html
// is a copy of the single page.
func Markdown() Definition {
	const (
		pandoc  = "markdown_pandoc"
		htmldoc = "markdown_htmldoc"
	)
	return Definition{
		Name:       "Markdown",
		FormatName: "Markdown",
		Extensions: []string{".md"},
		Requirements: []build.Requirement{
			exe(pandoc, "pandoc"),
			exe(htmldoc, "htmldoc"),
		},
		Steps: []*build.Step{
			resourcesStep(),
			{
				Name:      StepHTMLS,
				DependsOn: []string{StepResources},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{
						build.Cmd(j.Tool(pandoc), "--standalone", "--toc", "-f", "markdown", "-t", "html",
							"-o", j.File("-single.html"), j.Source),
					}
				},
			},
			{
				Name: StepTXT,
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{
						build.Cmd(j.Tool(pandoc), "-f", "markdown", "-t", "plain", "-o", j.File(".txt"), j.Source),
					}
				},
			},
			{
				Name:      StepPDF,
				DependsOn: []string{StepHTMLS},
				Commands: func(j *build.Job) []build.Command {
					return []build.Command{build.Cmd(j.Tool(pandoc), "-f", "markdown", "-o", j.File(".pdf"), j.Source)}
				},
				Fallback: func(j *build.Job) []build.Command {
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

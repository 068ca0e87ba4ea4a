package build

// Step is one named unit of a document type's build graph.
type Step struct {
	Name      string
	DependsOn []string
	// Commands templates the step's tool invocations for a job.
	Commands func(*Job) []Command
	// Fallback, if set, is tried only when Commands fail; its result is the step's result.
	Fallback func(*Job) []Command
	// Intermediates lists files, relative to the output directory, removed once the build ends.
	Intermediates []string
	// IntermediatesFor computes intermediates that depend on the job.
	IntermediatesFor func(*Job) []string
}

func (s *Step) intermediates(j *Job) []string {
	out := append([]string(nil), s.Intermediates...)
	if s.IntermediatesFor != nil {
		out = append(out, s.IntermediatesFor(j)...)
	}
	return out
}

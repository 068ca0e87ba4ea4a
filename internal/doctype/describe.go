package doctype

// Description is the listing form of a document type.
type Description struct {
	Name         string            `yaml:"name"`
	Format       string            `yaml:"format"`
	Extensions   []string          `yaml:"extensions"`
	Signatures   []string          `yaml:"signatures,omitempty"`
	Requirements map[string]string `yaml:"requirements"`
	Steps        []StepDescription `yaml:"steps"`
}

// StepDescription lists one step in execution order.
type StepDescription struct {
	Name      string   `yaml:"name"`
	DependsOn []string `yaml:"depends_on,omitempty"`
	Fallback  bool     `yaml:"fallback,omitempty"`
}

// Describe summarises d; tools supplies the resolved requirement paths.
func (d *Doctype) Describe(tools map[string]string) Description {
	desc := Description{
		Name:         d.Name,
		Format:       d.FormatName,
		Extensions:   d.Extensions,
		Signatures:   d.Signatures,
		Requirements: make(map[string]string, len(d.Requirements)),
	}
	for _, r := range d.Requirements {
		path := tools[r.Key]
		if path == "" {
			path = r.Default
		}
		desc.Requirements[r.Key] = path
	}
	for _, s := range d.Graph.Order() {
		desc.Steps = append(desc.Steps, StepDescription{Name: s.Name, DependsOn: s.DependsOn, Fallback: s.Fallback != nil})
	}
	return desc
}

// Describe lists every registered type.
func (r *Registry) Describe(tools map[string]string) []Description {
	out := make([]Description, 0, len(r.types))
	for _, dt := range r.types {
		out = append(out, dt.Describe(tools))
	}
	return out
}

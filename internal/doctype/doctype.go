// Package doctype declares the supported source markup dialects, how to recognise them and
// the build graph that turns each into the published artifact set.
package doctype

import (
	"bytes"
	"fmt"

	"git.home.luguber.info/inful/docpub/internal/build"
)

// signatureWindow is how much of a file is searched for a signature.
const signatureWindow = 1024

// Definition is the static declaration of a document type.
type Definition struct {
	Name       string
	FormatName string
	Extensions []string
	// Signatures disambiguate types sharing an extension; matched case-insensitively near
	// the start of the file.
	Signatures   []string
	Requirements []build.Requirement
	Steps        []*build.Step
}

// Doctype is a registered document type with its validated build graph.
type Doctype struct {
	Definition
	Graph *build.Graph
}

func newDoctype(def Definition) (*Doctype, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("doctype without name")
	}
	if len(def.Extensions) == 0 {
		return nil, fmt.Errorf("doctype %s declares no extensions", def.Name)
	}
	g, err := build.NewGraph(def.Steps)
	if err != nil {
		return nil, fmt.Errorf("doctype %s: %w", def.Name, err)
	}
	return &Doctype{Definition: def, Graph: g}, nil
}

// SignatureIndex returns the position of the first declared signature found in head, or -1.
// Signatures are tried in declaration order.
func (d *Doctype) SignatureIndex(head []byte) int {
	lower := bytes.ToLower(head)
	for _, sig := range d.Signatures {
		if i := bytes.Index(lower, bytes.ToLower([]byte(sig))); i >= 0 {
			return i
		}
	}
	return -1
}

// HandlesExtension reports whether ext is one of the declared extensions.
func (d *Doctype) HandlesExtension(ext string) bool {
	for _, e := range d.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (d *Doctype) String() string { return d.Name }

package build

import "slices"

// Graph is an immutable, validated set of steps with a fixed execution order.
type Graph struct {
	steps  []*Step
	byName map[string]*Step
	order  []*Step
}

// NewGraph validates steps and resolves their order with Kahn's algorithm. Steps whose
// dependencies are satisfied at the same time run in declaration order.
//
// Validation rejects:
//   - an empty step list
//   - empty or duplicate step names
//   - dependencies on unknown steps
//   - self-loops and cycles
func NewGraph(steps []*Step) (*Graph, error) {
	if len(steps) == 0 {
		return nil, invalidf("no steps")
	}
	g := &Graph{steps: steps, byName: make(map[string]*Step, len(steps))}
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if s == nil || s.Name == "" {
			return nil, invalidf("step %d has no name", i)
		}
		if _, dup := g.byName[s.Name]; dup {
			return nil, invalidf("duplicate step name: %q", s.Name)
		}
		if s.Commands == nil {
			return nil, invalidf("step %q has no commands", s.Name)
		}
		g.byName[s.Name] = s
		index[s.Name] = i
	}

	indeg := make([]int, len(steps))
	dependents := make([][]int, len(steps))
	for i, s := range steps {
		seen := make(map[string]bool, len(s.DependsOn))
		for _, dep := range s.DependsOn {
			if dep == s.Name {
				return nil, invalidf("self-loop: %q", s.Name)
			}
			j, ok := index[dep]
			if !ok {
				return nil, invalidf("step %q depends on unknown step %q", s.Name, dep)
			}
			if seen[dep] {
				continue
			}
			seen[dep] = true
			indeg[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i := range steps {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}
	for len(ready) > 0 {
		slices.Sort(ready)
		i := ready[0]
		ready = ready[1:]
		g.order = append(g.order, steps[i])
		for _, d := range dependents[i] {
			indeg[d]--
			if indeg[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	if len(g.order) != len(steps) {
		var stuck []string
		for i, s := range steps {
			if indeg[i] > 0 {
				stuck = append(stuck, s.Name)
			}
		}
		return nil, cycleError(stuck)
	}
	return g, nil
}

// MustGraph is NewGraph for statically declared graphs; it panics on invalid input.
func MustGraph(steps ...*Step) *Graph {
	g, err := NewGraph(steps)
	if err != nil {
		panic(err)
	}
	return g
}

// Order returns the steps in execution order.
func (g *Graph) Order() []*Step { return slices.Clone(g.order) }

// Names returns the step names in execution order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.order))
	for i, s := range g.order {
		names[i] = s.Name
	}
	return names
}

// Step returns a step by name.
func (g *Graph) Step(name string) (*Step, bool) {
	s, ok := g.byName[name]
	return s, ok
}

// Len returns the number of steps.
func (g *Graph) Len() int { return len(g.steps) }

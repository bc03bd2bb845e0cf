package resolver

// TopologicalOrder returns the canonical paths of every file in the
// graph such that a file's dependencies (its `from` target and its
// `import` targets, in textual order) always precede it, and the root
// is emitted last (§4.1). A file appears exactly once.
func (g *Graph) TopologicalOrder() []string {
	visited := map[string]bool{}
	var order []string
	var visit func(path string)
	visit = func(path string) {
		if visited[path] {
			return
		}
		visited[path] = true
		f := g.Files[path]
		if f == nil {
			return
		}
		for _, dep := range f.depsOrder {
			visit(dep)
		}
		order = append(order, path)
	}
	visit(g.Root)
	return order
}

// File returns the resolved File for canonical path, or nil.
func (g *Graph) File(path string) *File {
	return g.Files[path]
}

package suite

import (
	"fmt"
	"sort"
	"strings"
)

// topologicalSort orders definitions using Kahn's algorithm,
// breaking ties by ID. It returns an error naming a cycle when
// one exists.
func topologicalSort(defs map[ID]*Definition) ([]*Definition, error) {
	inDegree := make(map[ID]int, len(defs))
	dependents := make(map[ID][]ID, len(defs))

	for id, d := range defs {
		if _, exists := inDegree[id]; !exists {
			inDegree[id] = 0
		}
		for _, dep := range d.Dependencies {
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var queue []ID
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sortIDs(queue)

	ordered := make([]*Definition, 0, len(defs))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if d, exists := defs[id]; exists {
			ordered = append(ordered, d)
		}

		next := dependents[id]
		sortIDs(next)
		for _, dep := range next {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(ordered) != len(defs) {
		return nil, fmt.Errorf("circular dependency detected: %s", detectCycle(defs))
	}
	return ordered, nil
}

// detectCycle describes one dependency cycle, found by an
// iterative depth-first search.
func detectCycle(defs map[ID]*Definition) string {
	const (
		white = iota
		gray
		black
	)
	colour := make(map[ID]int, len(defs))

	ids := make([]ID, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}
	sortIDs(ids)

	type frame struct {
		id    ID
		deps  []ID
		index int
	}

	for _, start := range ids {
		if colour[start] != white {
			continue
		}
		stack := []frame{{id: start, deps: depsOf(defs, start)}}
		colour[start] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.index >= len(top.deps) {
				colour[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			dep := top.deps[top.index]
			top.index++

			switch colour[dep] {
			case gray:
				var path []string
				for i := len(stack) - 1; i >= 0; i-- {
					path = append([]string{string(stack[i].id)}, path...)
					if stack[i].id == dep {
						break
					}
				}
				return strings.Join(append(path, string(dep)), " -> ")
			case white:
				colour[dep] = gray
				stack = append(stack, frame{id: dep, deps: depsOf(defs, dep)})
			}
		}
	}
	return "unknown cycle"
}

func depsOf(defs map[ID]*Definition, id ID) []ID {
	d, ok := defs[id]
	if !ok {
		return nil
	}
	deps := append([]ID(nil), d.Dependencies...)
	sortIDs(deps)
	return deps
}

func sortIDs(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// levels groups ordered definitions so that every definition
// comes after all of its dependencies' levels.
func levels(ordered []*Definition) [][]*Definition {
	depth := make(map[ID]int, len(ordered))
	var out [][]*Definition
	for _, d := range ordered {
		lvl := 0
		for _, dep := range d.Dependencies {
			if depth[dep]+1 > lvl {
				lvl = depth[dep] + 1
			}
		}
		depth[d.ID] = lvl
		for len(out) <= lvl {
			out = append(out, nil)
		}
		out[lvl] = append(out[lvl], d)
	}
	return out
}

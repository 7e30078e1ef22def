package datastructure

import (
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
)

// RunKosaraju. runs kosaraju's algorithm to find strongly connected components (SCCs) of the road graph
// and builds the condensation DAG used to answer reachability queries without a shortest path search.
// edges pointing outside the vertex set are ignored.
func (g *Graph) RunKosaraju() {
	n := Index(len(g.vertices))

	inAdj := make([][]Index, n)
	for u := Index(0); u < n; u++ {
		g.ForOutEdgesOf(u, func(e *Edge) {
			v, ok := g.vertexIndex[e.GetTo()]
			if !ok {
				return
			}
			inAdj[v] = append(inAdj[v], u)
		})
	}

	order := make([]Index, 0, n)
	visited := make([]bool, n)
	for v := Index(0); v < n; v++ {
		if !visited[v] {
			g.dfs(v, &order, visited, nil)
		}
	}

	order = util.ReverseG[Index](order)

	// reset visited
	visited = make([]bool, n)
	sccs := make([]Index, n)
	numComponents := Index(0)

	for _, v := range order {
		if !visited[v] {
			component := make([]Index, 0, 10)
			g.dfs(v, &component, visited, inAdj)
			for _, node := range component {
				sccs[node] = numComponents
			}
			numComponents++
		}
	}
	g.setSCCs(sccs)

	seen := make([]map[Index]struct{}, numComponents)
	condAdj := make([][]Index, numComponents)
	for u := Index(0); u < n; u++ {
		g.ForOutEdgesOf(u, func(e *Edge) {
			v, ok := g.vertexIndex[e.GetTo()]
			if !ok || sccs[u] == sccs[v] {
				return
			}
			from, to := sccs[u], sccs[v]
			if seen[from] == nil {
				seen[from] = make(map[Index]struct{})
			}
			if _, dup := seen[from][to]; dup {
				return
			}
			seen[from][to] = struct{}{}
			condAdj[from] = append(condAdj[from], to)
		})
	}

	g.setSCCCondensationAdj(condAdj)
}

// dfs. forward dfs when inAdj is nil, otherwise traverse the reversed graph.
func (g *Graph) dfs(v Index, output *[]Index, visited []bool, inAdj [][]Index) {
	visited[v] = true

	if inAdj == nil {
		g.ForOutEdgesOf(v, func(e *Edge) {
			w, ok := g.vertexIndex[e.GetTo()]
			if ok && !visited[w] {
				g.dfs(w, output, visited, inAdj)
			}
		})
	} else {
		for _, w := range inAdj[v] {
			if !visited[w] {
				g.dfs(w, output, visited, inAdj)
			}
		}
	}

	*output = append(*output, v)
}

// Reachable reports whether t can be reached from s, using the scc condensation DAG.
// RunKosaraju must have been called.
func (g *Graph) Reachable(s, t Index) bool {
	from, to := g.sccs[s], g.sccs[t]
	if from == to {
		return true
	}

	visited := make(map[Index]struct{})
	queue := []Index{from}
	visited[from] = struct{}{}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, next := range g.sccCondensationAdj[c] {
			if next == to {
				return true
			}
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return false
}

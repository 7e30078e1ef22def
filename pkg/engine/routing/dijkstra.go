package routing

import (
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
	da "github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
)

// ShortestPathTree. single-source shortest paths, from s to all other vertices.
// unreachable vertices get pkg.INF_WEIGHT.
func ShortestPathTree(graph *da.Graph, s da.Index) ([]float64, error) {
	n := graph.NumberOfVertices()
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = pkg.INF_WEIGHT
	}
	heapNodes := make([]*da.PriorityQueueNode[da.Index], n)
	settled := make([]bool, n)

	pq := da.NewBinaryHeap[da.Index]()
	dist[s] = 0
	heapNodes[s] = da.NewPriorityQueueNode(0, s)
	pq.Insert(heapNodes[s])

	for !pq.IsEmpty() {
		node, _ := pq.ExtractMin()
		u := node.GetItem()
		settled[u] = true

		var malformed error
		graph.ForOutEdgesOf(u, func(e *da.Edge) {
			if malformed != nil {
				return
			}
			v, ok := graph.GetIndex(e.GetTo())
			if !ok || e.GetLength() < 0 {
				malformed = util.WrapErrorf(ErrMalformedGraph, util.ErrInternalServerError,
					"invalid edge %d -> %d", e.GetFrom(), e.GetTo())
				return
			}
			if settled[v] {
				return
			}
			newDist := dist[u] + e.GetLength()
			if newDist >= dist[v] {
				return
			}
			dist[v] = newDist
			if heapNodes[v] == nil {
				heapNodes[v] = da.NewPriorityQueueNode(newDist, v)
				pq.Insert(heapNodes[v])
			} else {
				pq.DecreaseKey(heapNodes[v], newDist)
			}
		})
		if malformed != nil {
			return nil, malformed
		}
	}

	return dist, nil
}

// RouteLength returns the total length of route, taking the shortest edge between consecutive nodes.
func RouteLength(graph *da.Graph, route Route) (float64, error) {
	total := 0.0
	for i := 1; i < len(route); i++ {
		e, ok := graph.FindEdge(route[i-1], route[i])
		if !ok {
			return 0, util.WrapErrorf(ErrMalformedGraph, util.ErrInternalServerError,
				"no edge between %d and %d", route[i-1], route[i])
		}
		total += e.GetLength()
	}
	return total, nil
}

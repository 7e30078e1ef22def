package routing

import (
	"math"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
	da "github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geo"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
)

// AStar is a unidirectional A* search minimizing the sum of edge lengths.
// the heuristic is the great circle distance to the target scaled by graph.HeuristicScale(),
// which keeps it admissible and consistent even for edge lengths shorter than the straight line.
// not safe for concurrent use, create one per query.
// with a LowerBound (ALT) the heuristic is the larger of both bounds.
type AStar struct {
	graph *da.Graph

	forwardInfo map[da.Index]*VertexInfo
	settled     map[da.Index]struct{}

	pq *da.MinHeap[da.Index]

	useHeuristic    bool
	lowerBound      LowerBound
	numSettledNodes int
}

// LowerBound is a consistent lower bound of the road distance from v to t.
// pkg.INF_WEIGHT means t is not reachable from v.
type LowerBound interface {
	LowerBound(v, t da.Index) float64
}

func NewAStar(graph *da.Graph) *AStar {
	return &AStar{
		graph:        graph,
		forwardInfo:  make(map[da.Index]*VertexInfo),
		settled:      make(map[da.Index]struct{}),
		pq:           da.NewFourAryHeap[da.Index](),
		useHeuristic: true,
	}
}

// NewDijkstra. A* with a zero heuristic.
func NewDijkstra(graph *da.Graph) *AStar {
	as := NewAStar(graph)
	as.useHeuristic = false
	return as
}

// NewALT. A* with landmarks and triangle inequality, lb is shared read only between queries.
func NewALT(graph *da.Graph, lb LowerBound) *AStar {
	as := NewAStar(graph)
	as.lowerBound = lb
	return as
}

func (as *AStar) GetNumSettledNodes() int {
	return as.numSettledNodes
}

func (as *AStar) reset() {
	as.forwardInfo = make(map[da.Index]*VertexInfo)
	as.settled = make(map[da.Index]struct{})
	as.pq.Clear()
	as.numSettledNodes = 0
}

func (as *AStar) heuristic(v, t da.Index) float64 {
	if !as.useHeuristic {
		return 0
	}
	vLat, vLon := as.graph.GetVertexCoordinates(v)
	tLat, tLon := as.graph.GetVertexCoordinates(t)
	h := as.graph.HeuristicScale() * geo.HaversineMeters(vLat, vLon, tLat, tLon)
	if as.lowerBound != nil {
		h = math.Max(h, as.lowerBound.LowerBound(v, t))
	}
	return h
}

// ShortestPath returns the length (meter) and the vertices of the shortest path from s to t.
func (as *AStar) ShortestPath(s, t da.Index) (float64, []da.Index, error) {
	if s == t {
		return 0, []da.Index{s}, nil
	}
	as.reset()

	sNode := da.NewPriorityQueueNode(as.heuristic(s, t), s)
	as.pq.Insert(sNode)
	as.forwardInfo[s] = NewVertexInfo(0, da.INVALID_VERTEX_ID, sNode)

	for !as.pq.IsEmpty() {
		queryKey, _ := as.pq.ExtractMin()
		u := queryKey.GetItem()

		if u == t {
			return as.forwardInfo[t].GetDist(), as.retrievePath(s, t), nil
		}

		as.settled[u] = struct{}{}
		as.numSettledNodes++

		if err := as.relaxOutEdges(u, t); err != nil {
			return 0, []da.Index{}, err
		}
	}

	uVertex, tVertex := as.graph.GetVertex(s), as.graph.GetVertex(t)
	return 0, []da.Index{}, util.WrapErrorf(ErrPathNotFound, util.ErrNotFound, "no path found from %d to %d",
		uVertex.GetID(), tVertex.GetID())
}

func (as *AStar) relaxOutEdges(u, t da.Index) error {
	var malformed error
	uDist := as.forwardInfo[u].GetDist()

	as.graph.ForOutEdgesOf(u, func(e *da.Edge) {
		if malformed != nil {
			return
		}

		length := e.GetLength()
		if length < 0 || math.IsNaN(length) || math.IsInf(length, 0) {
			malformed = util.WrapErrorf(ErrMalformedGraph, util.ErrInternalServerError,
				"edge %d -> %d has invalid length %v", e.GetFrom(), e.GetTo(), length)
			return
		}

		v, ok := as.graph.GetIndex(e.GetTo())
		if !ok {
			malformed = util.WrapErrorf(ErrMalformedGraph, util.ErrInternalServerError,
				"edge %d -> %d points to an unknown node", e.GetFrom(), e.GetTo())
			return
		}

		if _, done := as.settled[v]; done {
			return
		}

		newDist := uDist + length
		vInfo, vAlreadyLabelled := as.forwardInfo[v]
		if vAlreadyLabelled && newDist >= vInfo.GetDist() {
			// newDist is not better, do nothing
			return
		}

		h := as.heuristic(v, t)
		if h >= pkg.INF_WEIGHT {
			// t is not reachable from v
			return
		}
		priority := newDist + h
		if vAlreadyLabelled {
			vInfo.update(newDist, u)
			// key already in the priority queue, decrease its key
			as.pq.DecreaseKey(vInfo.GetHeapNode(), priority)
			return
		}

		vhNode := da.NewPriorityQueueNode(priority, v)
		as.forwardInfo[v] = NewVertexInfo(newDist, u, vhNode)
		as.pq.Insert(vhNode)
	})

	return malformed
}

func (as *AStar) retrievePath(s, t da.Index) []da.Index {
	path := make([]da.Index, 0)
	for cur := t; cur != da.INVALID_VERTEX_ID; cur = as.forwardInfo[cur].GetParent() {
		path = append(path, cur)
		if cur == s {
			break
		}
	}
	return util.ReverseG(path)
}

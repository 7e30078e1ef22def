package datastructure

import (
	"math"
	"sort"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geo"
)

type Index uint32

const INVALID_VERTEX_ID Index = math.MaxUint32

// Vertex is a road network node. id is the identifier assigned by the graph builder (the osm node id).
type Vertex struct {
	id  int64
	lat float64
	lon float64
}

func NewVertex(id int64, lat, lon float64) Vertex {
	return Vertex{id: id, lat: lat, lon: lon}
}

func (v Vertex) GetID() int64 {
	return v.id
}

func (v Vertex) GetLat() float64 {
	return v.lat
}

func (v Vertex) GetLon() float64 {
	return v.lon
}

// Edge is a directed road segment. length in meter.
type Edge struct {
	from   int64
	to     int64
	length float64
	hwType pkg.OsmHighwayType
}

func NewEdge(from, to int64, length float64) Edge {
	return Edge{from: from, to: to, length: length, hwType: pkg.UNKNOWN}
}

func NewEdgeWithHighway(from, to int64, length float64, hwType pkg.OsmHighwayType) Edge {
	return Edge{from: from, to: to, length: length, hwType: hwType}
}

func (e *Edge) GetFrom() int64 {
	return e.from
}

func (e *Edge) GetTo() int64 {
	return e.to
}

func (e *Edge) GetLength() float64 {
	return e.length
}

func (e *Edge) GetHighwayType() pkg.OsmHighwayType {
	return e.hwType
}

// Graph is an immutable directed road graph. vertices are kept sorted by id.
// edges whose endpoints are not in the vertex set are kept as is, the search reports them.
type Graph struct {
	vertices    []Vertex
	vertexIndex map[int64]Index
	outEdges    [][]Edge
	orphanEdges []Edge // tail not in the vertex set

	numEdges       int
	heuristicScale float64
	boundingBox    geo.Region

	sccs               []Index
	sccCondensationAdj [][]Index
}

func NewGraph(vertices []Vertex, edges []Edge) *Graph {
	vs := make([]Vertex, 0, len(vertices))
	vertexIndex := make(map[int64]Index, len(vertices))

	sorted := make([]Vertex, len(vertices))
	copy(sorted, vertices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].id < sorted[j].id
	})

	coords := make([]geo.Coordinate, 0, len(sorted))
	for _, v := range sorted {
		if _, ok := vertexIndex[v.id]; ok {
			// duplicated id, first one wins
			continue
		}
		vertexIndex[v.id] = Index(len(vs))
		vs = append(vs, v)
		coords = append(coords, geo.NewCoordinate(v.lat, v.lon))
	}

	g := &Graph{
		vertices:       vs,
		vertexIndex:    vertexIndex,
		outEdges:       make([][]Edge, len(vs)),
		orphanEdges:    make([]Edge, 0),
		numEdges:       len(edges),
		heuristicScale: 1.0,
		boundingBox:    geo.NewRegion(coords),
	}

	for _, e := range edges {
		u, ok := vertexIndex[e.from]
		if !ok {
			g.orphanEdges = append(g.orphanEdges, e)
			continue
		}
		g.outEdges[u] = append(g.outEdges[u], e)
	}

	g.computeHeuristicScale()
	return g
}

// computeHeuristicScale. the straight line distance is a lower bound of a road length only if every edge
// is at least as long as the distance between its endpoints. edge weights supplied from outside may be
// shorter, so we scale the heuristic down by the smallest length/distance ratio to keep it admissible & consistent.
func (g *Graph) computeHeuristicScale() {
	scale := 1.0
	for u := range g.outEdges {
		for i := range g.outEdges[u] {
			e := &g.outEdges[u][i]
			v, ok := g.vertexIndex[e.to]
			if !ok {
				continue
			}
			from, to := g.vertices[u], g.vertices[v]
			d := geo.HaversineMeters(from.lat, from.lon, to.lat, to.lon)
			if d <= 0 {
				continue
			}
			if math.IsNaN(e.length) || e.length <= 0 {
				scale = 0
				continue
			}
			scale = math.Min(scale, e.length/d)
		}
	}
	g.heuristicScale = math.Max(scale, 0)
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices)
}

func (g *Graph) NumberOfEdges() int {
	return g.numEdges
}

func (g *Graph) GetIndex(id int64) (Index, bool) {
	idx, ok := g.vertexIndex[id]
	return idx, ok
}

func (g *Graph) HasVertex(id int64) bool {
	_, ok := g.vertexIndex[id]
	return ok
}

func (g *Graph) GetVertex(u Index) Vertex {
	return g.vertices[u]
}

func (g *Graph) GetVertexByID(id int64) (Vertex, bool) {
	idx, ok := g.vertexIndex[id]
	if !ok {
		return Vertex{}, false
	}
	return g.vertices[idx], true
}

func (g *Graph) GetVertexCoordinates(u Index) (float64, float64) {
	return g.vertices[u].lat, g.vertices[u].lon
}

// Vertices returns the vertices in ascending id order. callers must not modify the slice.
func (g *Graph) Vertices() []Vertex {
	return g.vertices
}

// ForVertices iterates vertices in ascending id order.
func (g *Graph) ForVertices(handle func(v Vertex)) {
	for _, v := range g.vertices {
		handle(v)
	}
}

func (g *Graph) GetOutDegree(u Index) int {
	return len(g.outEdges[u])
}

func (g *Graph) ForOutEdgesOf(u Index, handle func(e *Edge)) {
	for i := range g.outEdges[u] {
		handle(&g.outEdges[u][i])
	}
}

// ForEdges iterates every edge, including the ones whose tail is unknown.
func (g *Graph) ForEdges(handle func(e *Edge)) {
	for u := range g.outEdges {
		for i := range g.outEdges[u] {
			handle(&g.outEdges[u][i])
		}
	}
	for i := range g.orphanEdges {
		handle(&g.orphanEdges[i])
	}
}

func (g *Graph) HeuristicScale() float64 {
	return g.heuristicScale
}

func (g *Graph) GetBoundingBox() geo.Region {
	return g.boundingBox
}

// FindEdge returns the shortest edge from u to v, if any.
func (g *Graph) FindEdge(from, to int64) (Edge, bool) {
	u, ok := g.vertexIndex[from]
	if !ok {
		return Edge{}, false
	}
	found := false
	best := Edge{}
	for _, e := range g.outEdges[u] {
		if e.to == to && (!found || e.length < best.length) {
			best = e
			found = true
		}
	}
	return best, found
}

func (g *Graph) setSCCs(sccs []Index) {
	g.sccs = sccs
}

func (g *Graph) setSCCCondensationAdj(adj [][]Index) {
	g.sccCondensationAdj = adj
}

func (g *Graph) HasSCCs() bool {
	return len(g.sccs) == len(g.vertices) && len(g.vertices) > 0
}

func (g *Graph) GetSCCOfAVertex(u Index) Index {
	return g.sccs[u]
}

// Reverse returns the graph with every edge flipped. vertex indices are the same as in g.
// edges with an endpoint outside the vertex set are dropped.
func (g *Graph) Reverse() *Graph {
	edges := make([]Edge, 0, g.numEdges)
	for u := range g.outEdges {
		for _, e := range g.outEdges[u] {
			if _, ok := g.vertexIndex[e.to]; !ok {
				continue
			}
			edges = append(edges, Edge{from: e.to, to: e.from, length: e.length, hwType: e.hwType})
		}
	}
	return NewGraph(g.vertices, edges)
}

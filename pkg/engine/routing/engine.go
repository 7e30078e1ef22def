package routing

import (
	da "github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geo"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"go.uber.org/zap"
)

// Route is the ordered list of node ids from source to destination, inclusive.
// an empty route means no path was found.
type Route []int64

type Algorithm string

const (
	ALGORITHM_ASTAR    Algorithm = "astar"
	ALGORITHM_DIJKSTRA Algorithm = "dijkstra"
	ALGORITHM_ALT      Algorithm = "alt"
)

type RoutingEngine struct {
	graph      *da.Graph
	logger     *zap.Logger
	algorithm  Algorithm
	lowerBound LowerBound
}

func NewRoutingEngine(graph *da.Graph, logger *zap.Logger, algorithm Algorithm) *RoutingEngine {
	if algorithm != ALGORITHM_DIJKSTRA && algorithm != ALGORITHM_ALT {
		algorithm = ALGORITHM_ASTAR
	}
	return &RoutingEngine{
		graph:     graph,
		logger:    logger,
		algorithm: algorithm,
	}
}

func (re *RoutingEngine) GetGraph() *da.Graph {
	return re.graph
}

func (re *RoutingEngine) GetAlgorithm() Algorithm {
	return re.algorithm
}

// SetLowerBound sets the landmark bound used by ALGORITHM_ALT. must be called before serving queries.
func (re *RoutingEngine) SetLowerBound(lb LowerBound) {
	re.lowerBound = lb
}

func (re *RoutingEngine) newSearch() *AStar {
	switch {
	case re.algorithm == ALGORITHM_DIJKSTRA:
		return NewDijkstra(re.graph)
	case re.algorithm == ALGORITHM_ALT && re.lowerBound != nil:
		return NewALT(re.graph, re.lowerBound)
	default:
		return NewAStar(re.graph)
	}
}

// FindRoute computes the shortest route between two node ids. the route is empty whenever err != nil.
func (re *RoutingEngine) FindRoute(sourceID, destID int64) (Route, float64, error) {
	s, ok := re.graph.GetIndex(sourceID)
	if !ok {
		return Route{}, 0, util.WrapErrorf(ErrUnknownNode, util.ErrNotFound, "source node %d not found", sourceID)
	}
	t, ok := re.graph.GetIndex(destID)
	if !ok {
		return Route{}, 0, util.WrapErrorf(ErrUnknownNode, util.ErrNotFound, "destination node %d not found", destID)
	}

	if re.graph.HasSCCs() && !re.graph.Reachable(s, t) {
		return Route{}, 0, util.WrapErrorf(ErrPathNotFound, util.ErrNotFound,
			"no path found from %d to %d", sourceID, destID)
	}

	search := re.newSearch()
	dist, path, err := search.ShortestPath(s, t)
	if err != nil {
		re.logger.Debug("route search failed", zap.Int64("source", sourceID), zap.Int64("destination", destID),
			zap.Error(err))
		return Route{}, 0, err
	}

	re.logger.Debug("route found", zap.Int64("source", sourceID), zap.Int64("destination", destID),
		zap.Float64("distance", dist), zap.Int("settled", search.GetNumSettledNodes()))

	route := make(Route, 0, len(path))
	for _, v := range path {
		route = append(route, re.graph.GetVertex(v).GetID())
	}
	return route, dist, nil
}

// RouteCoordinates returns the coordinates of every node of the route.
func (re *RoutingEngine) RouteCoordinates(route Route) []geo.Coordinate {
	coords := make([]geo.Coordinate, 0, len(route))
	for _, id := range route {
		v, ok := re.graph.GetVertexByID(id)
		if !ok {
			continue
		}
		coords = append(coords, geo.NewCoordinate(v.GetLat(), v.GetLon()))
	}
	return coords
}

// FindRoute runs an A* search over graph and returns the route, or an empty route when there is none
// or the graph cannot be searched.
func FindRoute(graph *da.Graph, sourceID, destID int64) Route {
	route, _, err := NewRoutingEngine(graph, zap.NewNop(), ALGORITHM_ASTAR).FindRoute(sourceID, destID)
	if err != nil {
		return Route{}
	}
	return route
}

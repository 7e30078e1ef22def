package engine

import (
	"errors"
	"os"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/engine/routing"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/landmark"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/osmparser"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"go.uber.org/zap"
)

var ErrGraphUnavailable = errors.New("error fetching map data, please check location settings")

type Engine struct {
	routingEngine *routing.RoutingEngine
}

func (e *Engine) GetRoutingEngine() *routing.RoutingEngine {
	return e.routingEngine
}

// Reachable reports whether there is a directed path from sourceID to destID, using the strongly connected
// components of the graph.
func (e *Engine) Reachable(sourceID, destID int64) bool {
	graph := e.routingEngine.GetGraph()
	s, ok := graph.GetIndex(sourceID)
	if !ok {
		return false
	}
	t, ok := graph.GetIndex(destID)
	if !ok {
		return false
	}
	return graph.Reachable(s, t)
}

// UseLandmarks prepares the ALT lower bound with k landmarks, read from (or written to) landmarkFilePath.
// a no-op unless the engine was created with routing.ALGORITHM_ALT.
func (e *Engine) UseLandmarks(landmarkFilePath string, k int, logger *zap.Logger) error {
	if e.routingEngine.GetAlgorithm() != routing.ALGORITHM_ALT {
		return nil
	}
	lm, err := landmark.LoadOrCompute(landmarkFilePath, k, e.routingEngine.GetGraph(), logger)
	if err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "failed to prepare landmarks")
	}
	e.routingEngine.SetLowerBound(lm)
	return nil
}

// NewEngine loads the road graph (see LoadGraph) and prepares the routing engine.
func NewEngine(graphFilePath, osmFilePath string, logger *zap.Logger, algorithm routing.Algorithm) (*Engine, error) {
	graph, err := LoadGraph(graphFilePath, osmFilePath, logger)
	if err != nil {
		return nil, err
	}
	return NewEngineDirect(graph, logger, algorithm), nil
}

func NewEngineDirect(graph *datastructure.Graph, logger *zap.Logger, algorithm routing.Algorithm) *Engine {
	logger.Info("Computing strongly connected components of the road graph...")
	graph.RunKosaraju()

	return &Engine{
		routingEngine: routing.NewRoutingEngine(graph, logger, algorithm),
	}
}

// LoadGraph reads the graph snapshot at graphFilePath. when there is no snapshot yet, the openstreetmap
// extract at osmFilePath is parsed and a snapshot is written for the next run.
// failing to obtain a graph is reported as ErrGraphUnavailable, it is not retried.
func LoadGraph(graphFilePath, osmFilePath string, logger *zap.Logger) (*datastructure.Graph, error) {
	if graphFilePath != "" {
		if _, err := os.Stat(graphFilePath); err == nil {
			logger.Info("Reading graph from ", zap.String("graphFilePath", graphFilePath))
			graph, err := datastructure.ReadGraph(graphFilePath)
			if err == nil {
				return graph, nil
			}
			logger.Warn("graph snapshot is unreadable, parsing openstreetmap file instead",
				zap.String("graphFilePath", graphFilePath), zap.Error(err))
		}
	}

	logger.Info("Parsing openstreetmap file", zap.String("osmFilePath", osmFilePath))
	parser := osmparser.NewOSMParser()
	graph, err := parser.Parse(osmFilePath, logger)
	if err != nil {
		return nil, util.WrapErrorf(errors.Join(ErrGraphUnavailable, err), util.ErrInternalServerError,
			"failed to build road graph from %s", osmFilePath)
	}
	if graph.NumberOfVertices() == 0 {
		return nil, util.WrapErrorf(ErrGraphUnavailable, util.ErrInternalServerError,
			"road graph from %s has no drivable roads", osmFilePath)
	}

	if graphFilePath != "" {
		if err := graph.WriteGraph(graphFilePath); err != nil {
			logger.Warn("failed to write graph snapshot", zap.String("graphFilePath", graphFilePath), zap.Error(err))
		}
	}
	return graph, nil
}

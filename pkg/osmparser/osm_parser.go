package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geo"
	"go.uber.org/zap"
)

type osmWay struct {
	nodes   []int64
	forward bool
	reverse bool
	hwType  pkg.OsmHighwayType
}

// OsmParser builds the drivable road graph of an openstreetmap extract.
// graph vertices are way endpoints and junctions, edges are the road segments between them
// with their length in meter.
type OsmParser struct {
	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]NodeCoord
	ways            []osmWay
}

func NewOSMParser() *OsmParser {
	return &OsmParser{
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]NodeCoord),
		ways:            make([]osmWay, 0),
	}
}

func (p *OsmParser) SetAcceptedNodeMap(acceptedNodeMap map[int64]NodeCoord) {
	p.acceptedNodeMap = acceptedNodeMap
}

// Parse reads mapFile (.osm.pbf, .osm or .osm.bz2) twice: first to classify way nodes, then to
// collect node coordinates and road segments.
func (p *OsmParser) Parse(mapFile string, logger *zap.Logger) (*datastructure.Graph, error) {
	countWays := 0
	err := scanFile(mapFile, func(o osm.Object) {
		way, ok := o.(*osm.Way)
		if !ok || len(way.Nodes) < 2 || !acceptOsmWay(way) {
			return
		}
		if (countWays+1)%50000 == 0 {
			logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for i, node := range way.Nodes {
			if _, ok := p.wayNodeMap[int64(node.ID)]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[int64(node.ID)] = END_NODE
				} else {
					p.wayNodeMap[int64(node.ID)] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[int64(node.ID)] = JUNCTION_NODE
			}
		}
	})
	if err != nil {
		return nil, err
	}

	countNodes := 0
	err = scanFile(mapFile, func(o osm.Object) {
		switch obj := o.(type) {
		case *osm.Node:
			if _, ok := p.wayNodeMap[int64(obj.ID)]; !ok {
				return
			}
			if (countNodes+1)%500000 == 0 {
				logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			p.acceptedNodeMap[int64(obj.ID)] = NewNodeCoord(obj.Lat, obj.Lon)
		case *osm.Way:
			if len(obj.Nodes) < 2 || !acceptOsmWay(obj) {
				return
			}
			p.ways = append(p.ways, newOsmWay(obj))
		}
	})
	if err != nil {
		return nil, err
	}

	graph := p.BuildGraph()

	logger.Sugar().Infof("number of vertices: %v", graph.NumberOfVertices())
	logger.Sugar().Infof("number of edges: %v", graph.NumberOfEdges())

	return graph, nil
}

func newOsmWay(way *osm.Way) osmWay {
	nodes := make([]int64, 0, len(way.Nodes))
	for _, n := range way.Nodes {
		nodes = append(nodes, int64(n.ID))
	}

	forward, reverse := true, true
	okvf, okmvf, okvb, okmvb := getReversedOneWay(way)
	switch way.Tags.Find("oneway") {
	case "yes", "true", "1":
		reverse = false
	case "-1", "reverse":
		forward = false
	default:
		if way.Tags.Find("junction") == "roundabout" || way.Tags.Find("junction") == "circular" {
			reverse = false
		}
	}
	if okvf || okmvf {
		// restricted/not allowed forward.
		forward = false
	}
	if okvb || okmvb {
		reverse = false
	}

	return osmWay{
		nodes:   nodes,
		forward: forward,
		reverse: reverse,
		hwType:  pkg.GetHighwayType(way.Tags.Find("highway")),
	}
}

// BuildGraph splits every way at its junction nodes and adds one edge per allowed direction.
func (p *OsmParser) BuildGraph() *datastructure.Graph {
	vertexSet := make(map[int64]struct{})
	edges := make([]datastructure.Edge, 0)

	for _, way := range p.ways {
		start := 0
		length := 0.0
		complete := true
		if _, ok := p.acceptedNodeMap[way.nodes[0]]; !ok {
			complete = false
		}

		for i := 1; i < len(way.nodes); i++ {
			prev, okPrev := p.acceptedNodeMap[way.nodes[i-1]]
			cur, okCur := p.acceptedNodeMap[way.nodes[i]]
			if okPrev && okCur {
				length += geo.HaversineMeters(prev.lat, prev.lon, cur.lat, cur.lon)
			} else {
				complete = false
			}

			if i != len(way.nodes)-1 && !p.isJunctionNode(way.nodes[i]) {
				continue
			}

			from, to := way.nodes[start], way.nodes[i]
			if complete && from != to {
				vertexSet[from] = struct{}{}
				vertexSet[to] = struct{}{}
				if way.forward {
					edges = append(edges, datastructure.NewEdgeWithHighway(from, to, length, way.hwType))
				}
				if way.reverse {
					edges = append(edges, datastructure.NewEdgeWithHighway(to, from, length, way.hwType))
				}
			}

			start = i
			length = 0
			_, complete = p.acceptedNodeMap[way.nodes[i]]
		}
	}

	vertices := make([]datastructure.Vertex, 0, len(vertexSet))
	for id := range vertexSet {
		c := p.acceptedNodeMap[id]
		vertices = append(vertices, datastructure.NewVertex(id, c.lat, c.lon))
	}

	return datastructure.NewGraph(vertices, edges)
}

func (p *OsmParser) isJunctionNode(nodeID int64) bool {
	return p.wayNodeMap[nodeID] == JUNCTION_NODE
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if _, ok := acceptedHighway[highway]; !ok {
		return false
	}
	if highway == "service" {
		if _, rejected := rejectedService[way.Tags.Find("service")]; rejected {
			return false
		}
	}
	if _, restricted := restrictedAccess[way.Tags.Find("access")]; restricted {
		return false
	}
	if isRestricted(way.Tags.Find("motor_vehicle")) || way.Tags.Find("area") == "yes" {
		return false
	}
	return true
}

func isRestricted(value string) bool {
	if value == "no" || value == "restricted" {
		return true
	}
	return false
}

func getReversedOneWay(way *osm.Way) (bool, bool, bool, bool) {
	vehicleForward := way.Tags.Find("vehicle:forward")
	motorVehicleForward := way.Tags.Find("motor_vehicle:forward")
	vehicleBackward := way.Tags.Find("vehicle:backward")
	motorVehicleBackward := way.Tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

// scanFile opens mapFile with the scanner matching its extension and calls handle for every object.
// must not be parallel, ways rely on the order of the file.
func scanFile(mapFile string, handle func(o osm.Object)) error {
	f, err := os.Open(mapFile)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner, closer, err := newScanner(mapFile, f)
	if err != nil {
		return err
	}
	defer closer()

	for scanner.Scan() {
		handle(scanner.Object())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", mapFile, err)
	}
	return nil
}

func newScanner(mapFile string, r io.Reader) (osm.Scanner, func(), error) {
	ctx := context.Background()
	switch {
	case strings.HasSuffix(mapFile, ".pbf"):
		// single decoder goroutine keeps the objects in file order
		scanner := osmpbf.New(ctx, r, 1)
		return scanner, func() { scanner.Close() }, nil
	case strings.HasSuffix(mapFile, ".bz2"):
		bz, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
		if err != nil {
			return nil, nil, err
		}
		scanner := osmxml.New(ctx, bz)
		return scanner, func() {
			scanner.Close()
			bz.Close()
		}, nil
	case strings.HasSuffix(mapFile, ".osm"), strings.HasSuffix(mapFile, ".xml"):
		scanner := osmxml.New(ctx, r)
		return scanner, func() { scanner.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported openstreetmap file %s, want .osm.pbf, .osm or .osm.bz2", mapFile)
	}
}

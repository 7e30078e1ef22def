package usecases

import (
	"errors"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/catalog"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/engine/routing"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geo"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/spatialindex"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrSameSourceDestination = errors.New("source and destination are the same place")
	ErrUnknownPlace          = errors.New("place is not in the catalog")
	ErrOutsideRegion         = errors.New("coordinate is outside the catalog region")
)

// RouteResult is what the renderer needs to draw a route.
type RouteResult struct {
	Nodes       []int64
	Coordinates []geo.Coordinate
	Polyline    string
	Distance    float64 // meter
}

type RoutingService struct {
	log            *zap.Logger
	engine         RoutingEngine
	catalog        PlaceCatalog
	spatialIndex   SpatialIndex
	regionMarginKm float64
}

func NewRoutingService(log *zap.Logger, engine RoutingEngine, places PlaceCatalog, spatialIndex SpatialIndex,
	regionMarginKm float64) *RoutingService {
	return &RoutingService{
		log:            log,
		engine:         engine,
		catalog:        places,
		spatialIndex:   spatialIndex,
		regionMarginKm: regionMarginKm,
	}
}

// ShortestPath resolves both place names through the catalog and searches the shortest route between their nodes.
func (rs *RoutingService) ShortestPath(sourceName, destName string) (RouteResult, error) {
	if sourceName == destName {
		return RouteResult{}, util.WrapErrorf(ErrSameSourceDestination, util.ErrBadParamInput,
			"Please select different source and destination")
	}

	sourceID, ok := rs.catalog.LookupByName(sourceName)
	if !ok {
		return RouteResult{}, util.WrapErrorf(ErrUnknownPlace, util.ErrNotFound, "place %q not found", sourceName)
	}
	destID, ok := rs.catalog.LookupByName(destName)
	if !ok {
		return RouteResult{}, util.WrapErrorf(ErrUnknownPlace, util.ErrNotFound, "place %q not found", destName)
	}

	route, dist, err := rs.engine.FindRoute(sourceID, destID)
	if err != nil {
		if errors.Is(err, routing.ErrPathNotFound) {
			return RouteResult{}, util.WrapErrorf(err, util.ErrNotFound, "No valid path found")
		}
		rs.log.Error("route search failed", zap.String("source", sourceName), zap.String("destination", destName),
			zap.Error(err))
		return RouteResult{}, err
	}

	coords := rs.engine.RouteCoordinates(route)
	return RouteResult{
		Nodes:       route,
		Coordinates: coords,
		Polyline:    geo.PolylineFromCoords(coords),
		Distance:    dist,
	}, nil
}

// Places returns the selectable route endpoints.
func (rs *RoutingService) Places() []catalog.PlaceEntry {
	return rs.catalog.Entries()
}

// NearestPlace snaps a coordinate to the closest catalog place.
func (rs *RoutingService) NearestPlace(lat, lon float64) (spatialindex.PlaceDistance, error) {
	if !rs.spatialIndex.Covers(lat, lon, rs.regionMarginKm) {
		return spatialindex.PlaceDistance{}, util.WrapErrorf(ErrOutsideRegion, util.ErrNotFound,
			"no place near %f,%f", lat, lon)
	}
	place, ok := rs.spatialIndex.Nearest(lat, lon)
	if !ok {
		return spatialindex.PlaceDistance{}, util.WrapErrorf(ErrUnknownPlace, util.ErrNotFound,
			"no place near %f,%f", lat, lon)
	}
	return place, nil
}

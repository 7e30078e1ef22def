package usecases

import (
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/catalog"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/engine/routing"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geo"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/spatialindex"
)

type RoutingEngine interface {
	FindRoute(sourceID, destID int64) (routing.Route, float64, error)
	RouteCoordinates(route routing.Route) []geo.Coordinate
}

type PlaceCatalog interface {
	LookupByName(name string) (int64, bool)
	Entries() []catalog.PlaceEntry
}

type SpatialIndex interface {
	Nearest(qLat, qLon float64) (spatialindex.PlaceDistance, bool)
	Covers(lat, lon, marginKm float64) bool
}

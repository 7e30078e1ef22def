package controllers

import (
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/catalog"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/http/usecases"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/spatialindex"
)

type RoutingService interface {
	ShortestPath(sourceName, destName string) (usecases.RouteResult, error)
	Places() []catalog.PlaceEntry
	NearestPlace(lat, lon float64) (spatialindex.PlaceDistance, error)
}

package controllers

import (
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/catalog"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geo"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/http/usecases"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/spatialindex"
)

type shortestPathRequest struct {
	Source      string `json:"source" validate:"required"`
	Destination string `json:"destination" validate:"required"`
}

type nearestPlaceRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

type placeResponse struct {
	ID   int64   `json:"id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

func NewPlaceResponse(p catalog.PlaceEntry) placeResponse {
	return placeResponse{
		ID:   p.ID,
		Lat:  p.Lat,
		Lon:  p.Lon,
		Name: p.Name,
	}
}

func NewPlacesResponse(places []catalog.PlaceEntry) []placeResponse {
	resp := make([]placeResponse, 0, len(places))
	for _, p := range places {
		resp = append(resp, NewPlaceResponse(p))
	}
	return resp
}

type nearestPlaceResponse struct {
	Place placeResponse `json:"place"`
	Dist  float64       `json:"distance"` // meter
}

func NewNearestPlaceResponse(pd spatialindex.PlaceDistance) nearestPlaceResponse {
	return nearestPlaceResponse{
		Place: NewPlaceResponse(pd.Place),
		Dist:  pd.Distance * 1000,
	}
}

type shortestPathResponse struct {
	Nodes       []int64          `json:"nodes"`
	Coordinates []geo.Coordinate `json:"coordinates"`
	Path        string           `json:"path"`
	Dist        float64          `json:"distance"` // meter
}

func NewShortestPathResponse(res usecases.RouteResult) shortestPathResponse {
	return shortestPathResponse{
		Nodes:       res.Nodes,
		Coordinates: res.Coordinates,
		Path:        res.Polyline,
		Dist:        res.Distance,
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

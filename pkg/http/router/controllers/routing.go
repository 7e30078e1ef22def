package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	helper "github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService RoutingService
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/computeRoutes", api.shortestPath)
	group.GET("/places", api.places)
	group.GET("/places/nearest", api.nearestPlace)
}

// shortestPath
//
//	@Summary		shortest route between two catalog places
//	@Tags			routing
//	@Produce		json
//	@Param			source		query		string	true	"source place name"
//	@Param			destination	query		string	true	"destination place name"
//	@Success		200			{object}	shortestPathResponse
//	@Failure		400			{object}	errorResponse
//	@Failure		404			{object}	errorResponse
//	@Router			/computeRoutes [get]
func (api *routingAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()
	request := shortestPathRequest{
		Source:      query.Get("source"),
		Destination: query.Get("destination"),
	}
	if !api.validate(w, r, request) {
		return
	}

	res, err := api.routingService.ShortestPath(request.Source, request.Destination)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewShortestPathResponse(res)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// places
//
//	@Summary		selectable route endpoints
//	@Tags			places
//	@Produce		json
//	@Success		200	{array}	placeResponse
//	@Router			/places [get]
func (api *routingAPI) places(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPlacesResponse(api.routingService.Places())},
		headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// nearestPlace
//
//	@Summary		catalog place closest to a coordinate
//	@Tags			places
//	@Produce		json
//	@Param			lat	query		number	true	"latitude"
//	@Param			lon	query		number	true	"longitude"
//	@Success		200	{object}	nearestPlaceResponse
//	@Failure		400	{object}	errorResponse
//	@Failure		404	{object}	errorResponse
//	@Router			/places/nearest [get]
func (api *routingAPI) nearestPlace(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request nearestPlaceRequest
		err     error
	)

	query := r.URL.Query()

	request.Lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	request.Lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
	if !api.validate(w, r, request) {
		return
	}

	place, err := api.routingService.NearestPlace(request.Lat, request.Lon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewNearestPlaceResponse(place)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

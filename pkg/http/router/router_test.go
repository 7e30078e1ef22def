package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/catalog"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/engine"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/engine/routing"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/http/usecases"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/spatialindex"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, rateLimit RateLimit) http.Handler {
	t.Helper()
	vertices := []datastructure.Vertex{
		datastructure.NewVertex(1, 36.7400, 2.9800),
		datastructure.NewVertex(2, 36.7410, 2.9810),
		datastructure.NewVertex(3, 36.7390, 2.9810),
		datastructure.NewVertex(4, 36.7400, 2.9820),
		datastructure.NewVertex(5, 36.7500, 2.9900),
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(1, 2, 150),
		datastructure.NewEdge(1, 3, 600),
		datastructure.NewEdge(2, 4, 150),
		datastructure.NewEdge(3, 4, 150),
	}
	e := engine.NewEngineDirect(datastructure.NewGraph(vertices, edges), zap.NewNop(), routing.ALGORITHM_ASTAR)

	places := catalog.NewCatalog([]catalog.PlaceEntry{
		catalog.NewPlaceEntry(1, 36.7400, 2.9800, "El Achour"),
		catalog.NewPlaceEntry(4, 36.7400, 2.9820, "Ouled Fayet"),
		catalog.NewPlaceEntry(5, 36.7500, 2.9900, "Baba Hassen"),
	})
	rt := spatialindex.NewRtree()
	rt.Build(places.Entries(), zap.NewNop())

	svc := usecases.NewRoutingService(zap.NewNop(), e.GetRoutingEngine(), places, rt, 1.0)
	return NewAPI(zap.NewNop()).Handler(rateLimit, svc)
}

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doGet(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestComputeRoutes(t *testing.T) {
	h := newTestHandler(t, RateLimit{})

	rec, resp := doGet(t, h, "/api/computeRoutes?source=El+Achour&destination=Ouled+Fayet")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Nodes       []int64 `json:"nodes"`
		Coordinates []struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coordinates"`
		Path string  `json:"path"`
		Dist float64 `json:"distance"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, []int64{1, 2, 4}, data.Nodes)
	assert.Equal(t, 300.0, data.Dist)
	assert.Len(t, data.Coordinates, 3)
	assert.NotEmpty(t, data.Path)
}

func TestComputeRoutesErrors(t *testing.T) {
	h := newTestHandler(t, RateLimit{})

	testCases := []struct {
		name        string
		target      string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "same source and destination",
			target:      "/api/computeRoutes?source=El+Achour&destination=El+Achour",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Please select different source and destination",
		},
		{
			name:       "missing destination",
			target:     "/api/computeRoutes?source=El+Achour",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown place",
			target:     "/api/computeRoutes?source=El+Achour&destination=Hydra",
			wantStatus: http.StatusNotFound,
		},
		{
			name:        "no path",
			target:      "/api/computeRoutes?source=Ouled+Fayet&destination=El+Achour",
			wantStatus:  http.StatusNotFound,
			wantMessage: "No valid path found",
		},
		{
			name:        "disconnected",
			target:      "/api/computeRoutes?source=El+Achour&destination=Baba+Hassen",
			wantStatus:  http.StatusNotFound,
			wantMessage: "No valid path found",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doGet(t, h, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, resp.Error.Message)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
		})
	}
}

func TestPlaces(t *testing.T) {
	h := newTestHandler(t, RateLimit{})

	rec, resp := doGet(t, h, "/api/places")
	require.Equal(t, http.StatusOK, rec.Code)

	var places []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &places))
	require.Len(t, places, 3)
	assert.Equal(t, "El Achour", places[0].Name)
	assert.Equal(t, int64(5), places[2].ID)
}

func TestNearestPlace(t *testing.T) {
	h := newTestHandler(t, RateLimit{})

	testCases := []struct {
		name       string
		target     string
		wantStatus int
		wantName   string
	}{
		{name: "near baba hassen", target: "/api/places/nearest?lat=36.7498&lon=2.9897", wantStatus: http.StatusOK, wantName: "Baba Hassen"},
		{name: "missing lon", target: "/api/places/nearest?lat=36.74", wantStatus: http.StatusBadRequest},
		{name: "invalid latitude", target: "/api/places/nearest?lat=120&lon=2.98", wantStatus: http.StatusBadRequest},
		{name: "outside region", target: "/api/places/nearest?lat=48.85&lon=2.35", wantStatus: http.StatusNotFound},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doGet(t, h, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantName == "" {
				return
			}
			var data struct {
				Place struct {
					Name string `json:"name"`
				} `json:"place"`
			}
			require.NoError(t, json.Unmarshal(resp.Data, &data))
			assert.Equal(t, tt.wantName, data.Place.Name)
		})
	}
}

func TestHeartbeat(t *testing.T) {
	h := newTestHandler(t, RateLimit{})
	rec, _ := doGet(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, RateLimit{Enabled: true, RPS: 0.001, Burst: 2})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec, _ := doGet(t, h, "/api/places")
		statuses = append(statuses, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestEnforceJSON(t *testing.T) {
	h := newTestHandler(t, RateLimit{})
	req := httptest.NewRequest(http.MethodGet, "/api/places", strings.NewReader("name=El Achour"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	api := NewAPI(zap.NewNop())
	h := api.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/places", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestRealIP(t *testing.T) {
	var got string
	h := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", got)
}

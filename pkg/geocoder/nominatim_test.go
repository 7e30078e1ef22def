package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"go.uber.org/zap"
)

func newTestNominatim(t *testing.T, url string, timeout time.Duration) *Nominatim {
	t.Helper()
	n, err := NewNominatim(util.GeocoderConfig{
		URL:       url,
		UserAgent: "geo_locator_app",
		Timeout:   timeout,
		CacheSize: 16,
	}, zap.NewNop())
	require.NoError(t, err)
	return n
}

func TestNominatimReverse(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		body       string
		wantStatus Status
		wantName   string
	}{
		{
			name:       "first address component",
			status:     http.StatusOK,
			body:       `{"place_id":1,"name":"","display_name":"Cité 1200 Logements, El Achour, Draria District, Algiers, 16104, Algeria"}`,
			wantStatus: RESOLVED,
			wantName:   "Cité 1200 Logements",
		},
		{
			name:       "single component",
			status:     http.StatusOK,
			body:       `{"display_name":"  El Achour  "}`,
			wantStatus: RESOLVED,
			wantName:   "El Achour",
		},
		{
			name:       "unable to geocode",
			status:     http.StatusOK,
			body:       `{"error":"Unable to geocode"}`,
			wantStatus: NO_RESULT,
			wantName:   pkg.UNKNOWN_PLACE,
		},
		{
			name:       "empty display name",
			status:     http.StatusOK,
			body:       `{"display_name":""}`,
			wantStatus: NO_RESULT,
			wantName:   pkg.UNKNOWN_PLACE,
		},
		{
			name:       "malformed json",
			status:     http.StatusOK,
			body:       `{"display_name":`,
			wantStatus: SERVICE_ERROR,
			wantName:   pkg.UNKNOWN_PLACE,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantStatus: SERVICE_ERROR,
			wantName:   pkg.UNKNOWN_PLACE,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/reverse", r.URL.Path)
				assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
				assert.Equal(t, "36.7401", r.URL.Query().Get("lat"))
				assert.Equal(t, "2.9812", r.URL.Query().Get("lon"))
				assert.Equal(t, "geo_locator_app", r.Header.Get("User-Agent"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res := newTestNominatim(t, srv.URL, time.Second).Reverse(context.Background(), 36.7401, 2.9812)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantName, res.PlaceName())
			if tt.wantStatus == SERVICE_ERROR {
				assert.Error(t, res.Err)
			} else {
				assert.NoError(t, res.Err)
			}
		})
	}
}

func TestNominatimTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	res := newTestNominatim(t, srv.URL, 50*time.Millisecond).Reverse(context.Background(), 36.74, 2.98)
	assert.Equal(t, SERVICE_ERROR, res.Status)
	assert.Equal(t, pkg.UNKNOWN_PLACE, res.PlaceName())
}

func TestNominatimRateLimitWaitIsNotTimedOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"display_name": "Cité Bouchaoui, El Achour"}`))
	}))
	defer srv.Close()

	n, err := NewNominatim(util.GeocoderConfig{
		URL:               srv.URL,
		UserAgent:         "geo_locator_app",
		Timeout:           100 * time.Millisecond,
		RequestsPerSecond: 10,
		CacheSize:         16,
	}, zap.NewNop())
	require.NoError(t, err)

	// the last caller waits ~500ms for the limiter, well past the request timeout
	results := make([]Result, 6)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = n.Reverse(context.Background(), 36.74+float64(i)/100, 2.98)
		}()
	}
	wg.Wait()

	for i, res := range results {
		assert.Equal(t, RESOLVED, res.Status, "call %d: %v", i, res.Err)
	}
}

func TestNominatimCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"display_name":"Draria, Algiers"}`))
	}))
	defer srv.Close()

	n := newTestNominatim(t, srv.URL, time.Second)
	first := n.Reverse(context.Background(), 36.74000001, 2.98)
	second := n.Reverse(context.Background(), 36.74000002, 2.98)

	assert.Equal(t, "Draria", first.PlaceName())
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "coordinates equal at 7 decimals share one lookup")
}

func TestNominatimConfig(t *testing.T) {
	_, err := NewNominatim(util.GeocoderConfig{UserAgent: "geo_locator_app"}, zap.NewNop())
	assert.Equal(t, util.ErrBadParamInput, util.ErrorCode(err))

	_, err = NewNominatim(util.GeocoderConfig{URL: "http://localhost"}, zap.NewNop())
	assert.Equal(t, util.ErrBadParamInput, util.ErrorCode(err))
}

func TestResultPlaceName(t *testing.T) {
	assert.Equal(t, "Ouled Fayet", Resolved("Ouled Fayet").PlaceName())
	assert.Equal(t, pkg.UNKNOWN_PLACE, Resolved("").PlaceName())
	assert.Equal(t, pkg.UNKNOWN_PLACE, NoResult().PlaceName())
	assert.Equal(t, pkg.UNKNOWN_PLACE, ServiceError(context.DeadlineExceeded).PlaceName())
}

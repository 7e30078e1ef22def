package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geocoder"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"go.uber.org/zap"
)

type memStore struct {
	mu      sync.Mutex
	saved   *Catalog
	saves   int
	added   [][]PlaceEntry
	saveErr error
}

func (s *memStore) Load(ctx context.Context) (*Catalog, error) {
	if s.saved == nil {
		return NewCatalog(nil), nil
	}
	return s.saved.clone(), nil
}

func (s *memStore) Save(ctx context.Context, catalog *Catalog, added []PlaceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.saved = catalog.clone()
	s.added = append(s.added, added)
	return nil
}

// fakeGeocoder resolves by latitude and records the latitudes it was asked for.
type fakeGeocoder struct {
	mu      sync.Mutex
	results map[float64]geocoder.Result
	calls   []float64
}

func (f *fakeGeocoder) Reverse(ctx context.Context, lat, lon float64) geocoder.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lat)
	res, ok := f.results[lat]
	if !ok {
		return geocoder.NoResult()
	}
	return res
}

func nodeLat(id int64) float64 {
	return 36.7 + float64(id)/1000
}

func newTestGraph(ids ...int64) *datastructure.Graph {
	vertices := make([]datastructure.Vertex, 0, len(ids))
	for _, id := range ids {
		vertices = append(vertices, datastructure.NewVertex(id, nodeLat(id), 2.98))
	}
	return datastructure.NewGraph(vertices, nil)
}

func newFakeGeocoder(names map[int64]geocoder.Result) *fakeGeocoder {
	results := make(map[float64]geocoder.Result, len(names))
	for id, res := range names {
		results[nodeLat(id)] = res
	}
	return &fakeGeocoder{results: results}
}

func elAchourNames() map[int64]geocoder.Result {
	return map[int64]geocoder.Result{
		1: geocoder.Resolved("El Achour"),
		2: geocoder.Resolved("15"),
		3: geocoder.Resolved("RN07"),
		4: geocoder.Resolved("El Achour"),
		5: geocoder.NoResult(),
		6: geocoder.ServiceError(errors.New("connection refused")),
		7: geocoder.Resolved("Cité Bouchaoui"),
	}
}

func TestReconcile(t *testing.T) {
	testCases := []struct {
		name      string
		workers   int
		existing  []PlaceEntry
		wantNames []string
		wantStats ReconcileStats
		wantIDs   []int64
	}{
		{
			name:      "empty catalog",
			workers:   1,
			wantNames: []string{"El Achour", pkg.UNKNOWN_PLACE, "Cité Bouchaoui"},
			wantStats: ReconcileStats{Candidates: 7, Admitted: 3, Rejected: 4, Unresolved: 2},
			wantIDs:   []int64{1, 5, 7},
		},
		{
			name:      "empty catalog with worker pool",
			workers:   4,
			wantNames: []string{"El Achour", pkg.UNKNOWN_PLACE, "Cité Bouchaoui"},
			wantStats: ReconcileStats{Candidates: 7, Admitted: 3, Rejected: 4, Unresolved: 2},
			wantIDs:   []int64{1, 5, 7},
		},
		{
			name:      "watermark skips known ids",
			workers:   1,
			existing:  []PlaceEntry{NewPlaceEntry(4, nodeLat(4), 2.98, "Draria")},
			wantNames: []string{"Draria", pkg.UNKNOWN_PLACE, "Cité Bouchaoui"},
			wantStats: ReconcileStats{Candidates: 3, Admitted: 2, Rejected: 1, Unresolved: 2},
			wantIDs:   []int64{4, 5, 7},
		},
		{
			name:      "existing names are never reused",
			workers:   2,
			existing:  []PlaceEntry{NewPlaceEntry(3, nodeLat(3), 2.98, "Cité Bouchaoui")},
			wantNames: []string{"Cité Bouchaoui", "El Achour", pkg.UNKNOWN_PLACE},
			wantStats: ReconcileStats{Candidates: 4, Admitted: 2, Rejected: 2, Unresolved: 2},
			wantIDs:   []int64{3, 4, 5},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			gc := newFakeGeocoder(elAchourNames())
			store := &memStore{}
			r := NewReconciler(gc, store, NewNameFilter(pkg.DEFAULT_RESERVED_PREFIXES), tt.workers, zap.NewNop())
			before := NewCatalog(tt.existing)

			got, stats, err := r.Reconcile(context.Background(), before, newTestGraph(7, 3, 1, 2, 6, 5, 4))
			require.NoError(t, err)

			assert.Equal(t, tt.wantNames, got.Names())
			assert.Equal(t, tt.wantStats, stats)
			ids := make([]int64, 0)
			for _, e := range got.Entries() {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.existing), before.Len(), "input catalog is not modified")

			watermark, ok := before.MaxID()
			for _, lat := range gc.calls {
				if ok {
					assert.Greater(t, lat, nodeLat(watermark), "only nodes above the watermark are geocoded")
				}
			}

			require.Equal(t, 1, store.saves)
			assert.Equal(t, got.Entries(), store.saved.Entries())
			assert.Len(t, store.added[0], stats.Admitted)
		})
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	gc := newFakeGeocoder(elAchourNames())
	store := &memStore{}
	r := NewReconciler(gc, store, NewNameFilter(pkg.DEFAULT_RESERVED_PREFIXES), 1, zap.NewNop())
	g := newTestGraph(1, 2, 3, 4, 5, 6, 7)

	first, _, err := r.Reconcile(context.Background(), NewCatalog(nil), g)
	require.NoError(t, err)

	second, stats, err := r.Reconcile(context.Background(), first, g)
	require.NoError(t, err)

	assert.Equal(t, first.Entries(), second.Entries())
	assert.Equal(t, 0, stats.Admitted)
	assert.Equal(t, 1, store.saves, "nothing new, storage untouched")
}

func TestReconcileNamesAreUnique(t *testing.T) {
	names := map[int64]geocoder.Result{}
	for id := int64(1); id <= 50; id++ {
		names[id] = geocoder.Resolved([]string{"El Achour", "Draria", "Baba Hassen"}[id%3])
	}
	gc := newFakeGeocoder(names)
	ids := make([]int64, 0, 60)
	for id := int64(1); id <= 60; id++ {
		ids = append(ids, id)
	}

	r := NewReconciler(gc, &memStore{}, NewNameFilter(nil), 3, zap.NewNop())
	got, stats, err := r.Reconcile(context.Background(), NewCatalog(nil), newTestGraph(ids...))
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, name := range got.Names() {
		assert.False(t, seen[name], "duplicated name %s", name)
		seen[name] = true
	}
	assert.Equal(t, 4, got.Len())
	assert.Equal(t, 60, stats.Candidates)
}

func TestReconcileCheckpointOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := newFakeGeocoder(elAchourNames())
	calls := 0
	gc := geocoder.GeocoderFunc(func(c context.Context, lat, lon float64) geocoder.Result {
		calls++
		if calls == 5 {
			cancel()
		}
		return inner.Reverse(c, lat, lon)
	})

	store := &memStore{}
	r := NewReconciler(gc, store, NewNameFilter(pkg.DEFAULT_RESERVED_PREFIXES), 1, zap.NewNop())
	got, stats, err := r.Reconcile(ctx, NewCatalog(nil), newTestGraph(1, 2, 3, 4, 5, 6, 7))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, util.ErrInternalServerError, util.ErrorCode(err))

	assert.Equal(t, []string{"El Achour"}, got.Names())
	assert.Equal(t, 4, stats.Admitted+stats.Rejected)
	assert.Equal(t, 5, calls)

	require.Equal(t, 1, store.saves, "partial result is checkpointed")
	assert.Equal(t, got.Entries(), store.saved.Entries())

	// resuming from the checkpoint geocodes only the remaining nodes
	resumed, _, err := r.Reconcile(context.Background(), store.saved, newTestGraph(1, 2, 3, 4, 5, 6, 7))
	require.NoError(t, err)
	assert.Equal(t, []string{"El Achour", pkg.UNKNOWN_PLACE, "Cité Bouchaoui"}, resumed.Names())
}

func TestReconcileSaveError(t *testing.T) {
	gc := newFakeGeocoder(elAchourNames())
	store := &memStore{saveErr: errors.New("disk full")}
	r := NewReconciler(gc, store, NewNameFilter(pkg.DEFAULT_RESERVED_PREFIXES), 1, zap.NewNop())

	got, _, err := r.Reconcile(context.Background(), NewCatalog(nil), newTestGraph(1, 7))
	assert.Error(t, err)
	assert.Equal(t, util.ErrInternalServerError, util.ErrorCode(err))
	assert.Equal(t, 2, got.Len())
}

type brokenStore struct{}

func (brokenStore) Load(ctx context.Context) (*Catalog, error) {
	return nil, util.WrapErrorf(errors.New("corrupt"), util.ErrInternalServerError, "read catalog")
}

func (brokenStore) Save(ctx context.Context, catalog *Catalog, added []PlaceEntry) error {
	return nil
}

func TestLoadNeverFails(t *testing.T) {
	c := Load(context.Background(), brokenStore{}, zap.NewNop())
	require.NotNil(t, c)
	assert.True(t, c.IsEmpty())

	store := &memStore{saved: NewCatalog([]PlaceEntry{NewPlaceEntry(1, 36.74, 2.98, "El Achour")})}
	c = Load(context.Background(), store, zap.NewNop())
	assert.Equal(t, []string{"El Achour"}, c.Names())
}

// throttled nominatim: 10 workers queue on a 10 req/s limiter for longer than the per request timeout.
func TestReconcileParallelWithThrottledNominatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"display_name": "Lotissement %s, El Achour, Algiers"}`, r.URL.Query().Get("lat"))
	}))
	defer srv.Close()

	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	run := func(workers int) (*Catalog, ReconcileStats) {
		gc, err := geocoder.NewNominatim(util.GeocoderConfig{
			URL:               srv.URL,
			UserAgent:         "geo_locator_app",
			Timeout:           300 * time.Millisecond,
			RequestsPerSecond: 10,
			CacheSize:         16,
		}, zap.NewNop())
		require.NoError(t, err)

		r := NewReconciler(gc, &memStore{}, NewNameFilter(pkg.DEFAULT_RESERVED_PREFIXES), workers, zap.NewNop())
		got, stats, err := r.Reconcile(context.Background(), NewCatalog(nil), newTestGraph(ids...))
		require.NoError(t, err)
		return got, stats
	}

	sequential, sequentialStats := run(1)
	parallel, parallelStats := run(10)

	assert.Equal(t, ReconcileStats{Candidates: 10, Admitted: 10}, sequentialStats)
	assert.Equal(t, sequentialStats, parallelStats)
	assert.Equal(t, sequential.Entries(), parallel.Entries())
}

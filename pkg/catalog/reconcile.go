package catalog

import (
	"context"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/concurrent"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/datastructure"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geocoder"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"go.uber.org/zap"
)

const progressInterval = 100

type ReconcileStats struct {
	Candidates int // nodes above the watermark
	Admitted   int
	Rejected   int // filtered out or duplicated name
	Unresolved int // geocoder gave no name, the node was offered as "Unknown"
}

type resolvedNode struct {
	vertex   datastructure.Vertex
	result   geocoder.Result
	canceled bool
}

// Reconciler extends a catalog with the graph nodes it has not seen yet.
type Reconciler struct {
	geocoder geocoder.ReverseGeocoder
	store    Store
	filter   NameFilter
	workers  int
	log      *zap.Logger
}

func NewReconciler(gc geocoder.ReverseGeocoder, store Store, filter NameFilter, workers int,
	log *zap.Logger) *Reconciler {
	if workers < 1 {
		workers = 1
	}
	return &Reconciler{
		geocoder: gc,
		store:    store,
		filter:   filter,
		workers:  workers,
		log:      log,
	}
}

// Reconcile geocodes every graph node with an id above the catalog watermark (every node if the catalog
// is empty) in ascending id order and admits the admissible, not yet used names. the input catalog is
// not modified.
// the result is persisted once if anything was admitted. when ctx is canceled the entries admitted so far
// are persisted and the wrapped ctx error is returned with the partial catalog.
func (r *Reconciler) Reconcile(ctx context.Context, catalog *Catalog, graph *datastructure.Graph) (*Catalog,
	ReconcileStats, error) {
	stats := ReconcileStats{}
	result := catalog.clone()

	candidates := r.candidates(catalog, graph)
	stats.Candidates = len(candidates)
	r.log.Info("reconciling place catalog", zap.Int("places", catalog.Len()), zap.Int("candidates", len(candidates)))

	var resolved []resolvedNode
	if r.workers > 1 {
		resolved = concurrent.Map(r.workers, candidates, func(v datastructure.Vertex) resolvedNode {
			return r.resolve(ctx, v)
		})
	}

	added := make([]PlaceEntry, 0)
	var ctxErr error
	for i, v := range candidates {
		var node resolvedNode
		if resolved != nil {
			node = resolved[i]
		} else {
			node = r.resolve(ctx, v)
		}
		if node.canceled {
			ctxErr = ctx.Err()
			break
		}

		if node.result.Status != geocoder.RESOLVED {
			stats.Unresolved++
		}

		entry := NewPlaceEntry(v.GetID(), v.GetLat(), v.GetLon(), node.result.PlaceName())
		if !r.filter.Admissible(entry.Name) || !result.add(entry) {
			stats.Rejected++
			r.log.Debug("place rejected", zap.Int64("id", entry.ID), zap.String("name", entry.Name))
		} else {
			stats.Admitted++
			added = append(added, entry)
		}

		if (i+1)%progressInterval == 0 {
			r.log.Info("reconciling place catalog...", zap.Int("processed", i+1), zap.Int("admitted", stats.Admitted))
		}
	}

	if len(added) > 0 {
		// the checkpoint must be written even if ctx is already canceled
		if err := r.store.Save(context.WithoutCancel(ctx), result, added); err != nil {
			return result, stats, util.WrapErrorf(err, util.ErrInternalServerError, "persist place catalog")
		}
	}

	r.log.Info("place catalog reconciled", zap.Int("candidates", stats.Candidates),
		zap.Int("admitted", stats.Admitted), zap.Int("rejected", stats.Rejected),
		zap.Int("unresolved", stats.Unresolved))

	if ctxErr != nil {
		return result, stats, util.WrapErrorf(ctxErr, util.ErrInternalServerError,
			"reconciliation interrupted after %d of %d candidates", stats.Admitted+stats.Rejected, stats.Candidates)
	}
	return result, stats, nil
}

// candidates returns the graph nodes above the watermark, in ascending id order.
func (r *Reconciler) candidates(catalog *Catalog, graph *datastructure.Graph) []datastructure.Vertex {
	watermark, ok := catalog.MaxID()
	candidates := make([]datastructure.Vertex, 0)
	graph.ForVertices(func(v datastructure.Vertex) {
		if ok && v.GetID() <= watermark {
			return
		}
		candidates = append(candidates, v)
	})
	return candidates
}

func (r *Reconciler) resolve(ctx context.Context, v datastructure.Vertex) resolvedNode {
	if util.StopConcurrentOperation(ctx) {
		return resolvedNode{vertex: v, canceled: true}
	}
	res := r.geocoder.Reverse(ctx, v.GetLat(), v.GetLon())
	// a lookup cut short by cancellation is not a real "Unknown"
	if ctx.Err() != nil {
		return resolvedNode{vertex: v, canceled: true}
	}
	return resolvedNode{vertex: v, result: res}
}

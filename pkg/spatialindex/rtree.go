package spatialindex

import (
	"sort"

	"github.com/tidwall/rtree"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/catalog"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geo"
	"go.uber.org/zap"
)

const (
	initialSearchRadius = 0.25 // km
	maxSearchRadius     = 2000 // km
)

// Rtree indexes catalog places by location, used to snap a coordinate to the nearest named place.
type Rtree struct {
	tr     *rtree.RTreeG[catalog.PlaceEntry]
	size   int
	region geo.Region
}

type PlaceDistance struct {
	Place    catalog.PlaceEntry
	Distance float64 // km
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[catalog.PlaceEntry]
	return &Rtree{
		tr: &tr,
	}
}

// Build inserts every place as a point and records the bounding region of the places.
func (rt *Rtree) Build(places []catalog.PlaceEntry, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("places", len(places)))

	coords := make([]geo.Coordinate, 0, len(places))
	for _, p := range places {
		point := [2]float64{p.Lon, p.Lat}
		rt.tr.Insert(point, point, p)
		coords = append(coords, geo.NewCoordinate(p.Lat, p.Lon))
	}
	rt.size += len(places)
	rt.region = geo.NewRegion(coords)

	log.Info("R-tree spatial index built.")
}

func (rt *Rtree) Len() int {
	return rt.size
}

// Covers reports whether (lat, lon) is within marginKm of the indexed places' bounding region.
func (rt *Rtree) Covers(lat, lon, marginKm float64) bool {
	return rt.region.Contains(lat, lon, marginKm)
}

// SearchWithinRadius returns the places within radius (in km) from (qLat, qLon), nearest first.
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []PlaceDistance {
	lo, hi := searchBox(qLat, qLon, radius)

	results := make([]PlaceDistance, 0, 10)
	rt.tr.Search(lo, hi,
		func(_, _ [2]float64, data catalog.PlaceEntry) bool {
			dist := geo.CalculateHaversineDistance(qLat, qLon, data.Lat, data.Lon)
			if dist <= radius {
				results = append(results, PlaceDistance{Place: data, Distance: dist})
			}
			return true
		})

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Place.ID < results[j].Place.ID
	})
	return results
}

// Nearest returns the place closest to (qLat, qLon). the search radius doubles until a place is found.
func (rt *Rtree) Nearest(qLat, qLon float64) (PlaceDistance, bool) {
	if rt.size == 0 {
		return PlaceDistance{}, false
	}
	for radius := initialSearchRadius; radius <= maxSearchRadius; radius *= 2 {
		results := rt.SearchWithinRadius(qLat, qLon, radius)
		if len(results) > 0 {
			return results[0], true
		}
	}
	return PlaceDistance{}, false
}

// searchBox is the lon/lat box with half-width radius (in km) around (lat, lon).
func searchBox(lat, lon, radius float64) ([2]float64, [2]float64) {
	maxLat, _ := geo.GetDestinationPoint(lat, lon, 0, radius)
	minLat, _ := geo.GetDestinationPoint(lat, lon, 180, radius)
	_, maxLon := geo.GetDestinationPoint(lat, lon, 90, radius)
	_, minLon := geo.GetDestinationPoint(lat, lon, 270, radius)
	return [2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}
}

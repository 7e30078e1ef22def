package geo

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Region is the lat/lon bounding rectangle of a set of points.
type Region struct {
	rect s2.Rect
}

func NewRegion(coords []Coordinate) Region {
	bounder := s2.NewRectBounder()
	for _, c := range coords {
		bounder.AddPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon)))
	}
	return Region{rect: bounder.RectBound()}
}

func (r Region) IsEmpty() bool {
	return r.rect.IsEmpty()
}

// Contains reports whether (lat, lon) lies inside the region grown by marginKm on every side.
func (r Region) Contains(lat, lon, marginKm float64) bool {
	if r.rect.IsEmpty() {
		return false
	}
	margin := s1.Angle(marginKm / earthRadiusKM)
	return r.rect.DistanceToLatLng(s2.LatLngFromDegrees(lat, lon)) <= margin
}

func (r Region) GetMinLat() float64 {
	return r.rect.Lo().Lat.Degrees()
}

func (r Region) GetMinLon() float64 {
	return r.rect.Lo().Lng.Degrees()
}

func (r Region) GetMaxLat() float64 {
	return r.rect.Hi().Lat.Degrees()
}

func (r Region) GetMaxLon() float64 {
	return r.rect.Hi().Lng.Degrees()
}

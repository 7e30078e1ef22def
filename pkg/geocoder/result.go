package geocoder

import (
	"context"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
)

type Status int

const (
	RESOLVED Status = iota
	NO_RESULT
	SERVICE_ERROR
)

func (s Status) String() string {
	switch s {
	case RESOLVED:
		return "resolved"
	case NO_RESULT:
		return "no result"
	default:
		return "service error"
	}
}

// Result of a reverse lookup. Err is set only for SERVICE_ERROR.
type Result struct {
	Status Status
	Name   string
	Err    error
}

func Resolved(name string) Result {
	return Result{Status: RESOLVED, Name: name}
}

func NoResult() Result {
	return Result{Status: NO_RESULT}
}

func ServiceError(err error) Result {
	return Result{Status: SERVICE_ERROR, Err: err}
}

// PlaceName returns the resolved name, or the "Unknown" sentinel for any failed lookup.
func (r Result) PlaceName() string {
	if r.Status != RESOLVED || r.Name == "" {
		return pkg.UNKNOWN_PLACE
	}
	return r.Name
}

// ReverseGeocoder resolves a coordinate to a place description.
// implementations must never block past ctx and report failures through Result, not panics.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) Result
}

// GeocoderFunc adapts a plain function to ReverseGeocoder.
type GeocoderFunc func(ctx context.Context, lat, lon float64) Result

func (f GeocoderFunc) Reverse(ctx context.Context, lat, lon float64) Result {
	return f(ctx, lat, lon)
}
